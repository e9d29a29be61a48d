package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"copymanga/internal/domain"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	chapterLimit = 500
	groupWorkers = 4
	dateLayout   = "2006-01-02"
)

var chinaTime = time.FixedZone("CST", 8*60*60)

type comicGroup struct {
	Key      string `json:"-"`
	Name     string `json:"name"`
	PathWord string `json:"path_word"`
}

// groupMap keeps the groups object in document order, the first entry is the
// default group.
type groupMap []comicGroup

func (g *groupMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil {
		*g = nil
		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("groups: expected object, got %v", tok)
	}

	groups := make(groupMap, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("groups: expected key, got %v", keyTok)
		}

		var group comicGroup
		if err := dec.Decode(&group); err != nil {
			return errors.Wrapf(err, "groups: %s", key)
		}
		group.Key = key

		groups = append(groups, group)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*g = groups
	return nil
}

type chapterItem struct {
	Name            string `json:"name"`
	Index           int    `json:"index"`
	UUID            string `json:"uuid"`
	ComicPathWord   string `json:"comic_path_word"`
	DatetimeCreated string `json:"datetime_created"`
}

// parseUploadDate returns epoch millis or 0 when the date is unparseable.
func parseUploadDate(value string) int64 {
	t, err := time.ParseInLocation(dateLayout, value, chinaTime)
	if err != nil {
		return 0
	}

	return t.UnixMilli()
}

// aggregateChapters fetches every group and returns one list, oldest first.
// A failing group is logged and left out, throttling and cancellation abort.
func (c *Copymanga) aggregateChapters(ctx context.Context, pathWord string, groups groupMap) ([]domain.Chapter, error) {
	if len(groups) == 0 {
		return []domain.Chapter{}, nil
	}

	batches := make([][]chapterItem, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(groupWorkers)

	for i, group := range groups {
		g.Go(func() error {
			items, err := c.groupChapters(gctx, pathWord, group)
			if err != nil {
				if fatal(err) {
					return err
				}

				c.log.Warn().Err(err).Str("manga", pathWord).Str("group", group.Name).Msg("skipping chapter group")
				return nil
			}

			batches[i] = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assembleChapters(pathWord, groups, batches), nil
}

// groupChapters pages through one group in server order.
func (c *Copymanga) groupChapters(ctx context.Context, pathWord string, group comicGroup) ([]chapterItem, error) {
	groupPath := group.PathWord
	if len(groupPath) == 0 {
		groupPath = group.Key
	}

	path := comicPathPrefix + pathWord + "/group/" + groupPath + "/chapters"

	var items []chapterItem
	offset := 0

	for {
		params := url.Values{
			"limit":    []string{strconv.Itoa(chapterLimit)},
			"offset":   []string{strconv.Itoa(offset)},
			"platform": []string{platformCode},
		}

		env, err := fetchEnvelope[pagination[chapterItem]](ctx, c, path, params)
		if err != nil {
			return nil, err
		}

		page, err := env.result()
		if err != nil {
			return nil, err
		}

		items = append(items, page.List...)
		offset += len(page.List)

		if len(page.List) == 0 || offset >= page.Total {
			return items, nil
		}
	}
}

// assembleChapters numbers the concatenated batches in group order and
// reverses the result once.
func assembleChapters(pathWord string, groups groupMap, batches [][]chapterItem) []domain.Chapter {
	defaultKey := groups[0].Key

	chapters := make([]domain.Chapter, 0)
	var number float32

	for i, group := range groups {
		for _, item := range batches[i] {
			name := item.Name
			if group.Key != defaultKey {
				name = group.Name + ": " + item.Name
			}

			comicPathWord := item.ComicPathWord
			if len(comicPathWord) == 0 {
				comicPathWord = pathWord
			}

			chapters = append(chapters, domain.Chapter{
				Name:       name,
				Number:     number,
				DateUpload: parseUploadDate(item.DatetimeCreated),
				Key:        ChapterKey(comicPathWord, item.UUID),
			})
			number++
		}
	}

	slices.Reverse(chapters)

	return chapters
}

func fatal(err error) bool {
	var rateLimited *domain.RateLimitedError
	if errors.As(err, &rateLimited) {
		return true
	}

	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
