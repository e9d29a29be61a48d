package source

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"copymanga/internal/domain"
)

const (
	urlPlaceholder  = "{url}"
	preferredSuffix = ".c1500x.webp"
)

var sizeSuffix = regexp.MustCompile(`\.c\d+x\.jpg$`)

type chapterContent struct {
	Chapter struct {
		UUID          string       `json:"uuid"`
		Name          string       `json:"name"`
		ComicPathWord string       `json:"comic_path_word"`
		Contents      []contentURL `json:"contents"`
		Words         []int        `json:"words"`
		IsLong        bool         `json:"is_long"`
	} `json:"chapter"`
}

type contentURL struct {
	URL string `json:"url"`
}

// rewriteImageURL asks the cdn for the large webp variant.
func rewriteImageURL(raw string) string {
	return sizeSuffix.ReplaceAllString(raw, preferredSuffix)
}

func (o Options) imageURL(raw string) string {
	u := rewriteImageURL(raw)
	if !o.UpscaleEnabled {
		return u
	}

	return strings.ReplaceAll(o.UpscaleURLTemplate, urlPlaceholder, u)
}

func mapPages(env envelope[chapterContent], opts Options) ([]domain.Page, error) {
	results, err := env.result()
	if err != nil {
		return nil, err
	}

	contents := results.Chapter.Contents
	if contents == nil {
		return nil, domain.NewAPIError(env.Code, "")
	}

	order := make([]int, len(contents))
	for i := range order {
		order[i] = i
	}

	// words only applies when it lines up with contents
	if words := results.Chapter.Words; len(words) == len(contents) {
		slices.SortStableFunc(order, func(a, b int) int {
			return cmp.Compare(words[a], words[b])
		})
	}

	pages := make([]domain.Page, 0, len(contents))
	for i, idx := range order {
		pages = append(pages, domain.Page{
			Index:    i,
			ImageURL: opts.imageURL(contents[idx].URL),
		})
	}

	return pages, nil
}
