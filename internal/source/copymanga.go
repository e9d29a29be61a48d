package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"copymanga/internal/domain"
	"copymanga/internal/sharedhttp"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	copymangaURL  = "https://api.mangacopy.com"
	CopymangaHost = "api.mangacopy.com"

	catalogLimit = 30
	platformCode = "4"
	popularPos   = "3200102"

	appVersion = "2.2.5"

	DefaultUpscaleURLTemplate = "https://wsrv.nl/?url={url}&w=3000&fit=inside&sharp=1&output=webp"
)

// Options is fixed at construction, only the upscale part can be swapped
// through UpdateUpscale.
type Options struct {
	BaseURL            string
	UpscaleEnabled     bool
	UpscaleURLTemplate string
}

type Copymanga struct {
	Client sharedhttp.Fetcher

	baseURL string
	log     zerolog.Logger
	opts    atomic.Pointer[Options]
}

// ValidateUpscaleTemplate rejects templates without a place for the image url.
func ValidateUpscaleTemplate(template string) error {
	if len(strings.TrimSpace(template)) == 0 {
		return fmt.Errorf("upscale url template can't be empty")
	}

	if !strings.Contains(template, urlPlaceholder) {
		return fmt.Errorf("upscale url template must contain %s: %q", urlPlaceholder, template)
	}

	return nil
}

func NewCopymanga(client sharedhttp.Fetcher, opts Options, log zerolog.Logger) (*Copymanga, error) {
	if len(opts.BaseURL) == 0 {
		opts.BaseURL = copymangaURL
	}

	if len(opts.UpscaleURLTemplate) == 0 {
		opts.UpscaleURLTemplate = DefaultUpscaleURLTemplate
	}

	if err := ValidateUpscaleTemplate(opts.UpscaleURLTemplate); err != nil {
		return nil, err
	}

	c := &Copymanga{
		Client:  client,
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		log:     log.With().Str("source", "copymanga").Logger(),
	}
	c.opts.Store(&opts)

	return c, nil
}

func (c *Copymanga) String() string {
	return "CopyManga"
}

// UpdateUpscale swaps the upscale settings. An invalid template leaves the
// current settings untouched.
func (c *Copymanga) UpdateUpscale(enabled bool, template string) error {
	if err := ValidateUpscaleTemplate(template); err != nil {
		return err
	}

	next := *c.opts.Load()
	next.UpscaleEnabled = enabled
	next.UpscaleURLTemplate = template
	c.opts.Store(&next)

	return nil
}

func (c *Copymanga) Options() Options {
	return *c.opts.Load()
}

func (c *Copymanga) ListPopular(ctx context.Context, page int) (domain.CatalogPage, error) {
	params, err := catalogParams(page)
	if err != nil {
		return domain.CatalogPage{}, err
	}
	params.Set("pos", popularPos)

	env, err := fetchEnvelope[pagination[popularItem]](ctx, c, "/api/v3/recs", params)
	if err != nil {
		return domain.CatalogPage{}, errors.Wrap(err, "failed to get popular manga")
	}

	return mapPopular(env)
}

func (c *Copymanga) ListLatest(ctx context.Context, page int) (domain.CatalogPage, error) {
	params, err := catalogParams(page)
	if err != nil {
		return domain.CatalogPage{}, err
	}

	env, err := fetchEnvelope[pagination[latestItem]](ctx, c, "/api/v3/update/newest", params)
	if err != nil {
		return domain.CatalogPage{}, errors.Wrap(err, "failed to get latest updates")
	}

	return mapLatest(env)
}

// Search browses popular manga when the query is blank.
func (c *Copymanga) Search(ctx context.Context, query string, page int) (domain.CatalogPage, error) {
	query = strings.TrimSpace(query)
	if len(query) == 0 {
		return c.ListPopular(ctx, page)
	}

	params, err := catalogParams(page)
	if err != nil {
		return domain.CatalogPage{}, err
	}
	params.Set("q", query)
	params.Set("platform", platformCode)

	env, err := fetchEnvelope[pagination[comicSummary]](ctx, c, "/api/v3/search/comic", params)
	if err != nil {
		return domain.CatalogPage{}, errors.Wrapf(err, "failed to search for %q", query)
	}

	return mapSearch(env)
}

func (c *Copymanga) GetDetail(ctx context.Context, key string) (domain.MangaDetail, error) {
	env, _, err := c.detail(ctx, key)
	if err != nil {
		return domain.MangaDetail{}, err
	}

	return mapDetail(env)
}

func (c *Copymanga) ListChapters(ctx context.Context, key string) ([]domain.Chapter, error) {
	env, pathWord, err := c.detail(ctx, key)
	if err != nil {
		return nil, err
	}

	results, err := env.result()
	if err != nil {
		return nil, err
	}

	return c.aggregateChapters(ctx, pathWord, results.Groups)
}

func (c *Copymanga) ListPages(ctx context.Context, chapterKey string) ([]domain.Page, error) {
	comicPath, chapterID, err := ParseChapterKey(chapterKey)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"platform": []string{platformCode},
	}

	env, err := fetchEnvelope[chapterContent](ctx, c, comicPath+chapterKeyMarker+chapterID, params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get pages for chapter %s", chapterID)
	}

	return mapPages(env, c.Options())
}

// detail fetches the comic behind key and returns it with the parsed path word.
func (c *Copymanga) detail(ctx context.Context, key string) (envelope[comicDetail], string, error) {
	pathWord, err := ParseMangaKey(key)
	if err != nil {
		return envelope[comicDetail]{}, "", err
	}

	params := url.Values{
		"platform": []string{platformCode},
	}

	env, err := fetchEnvelope[comicDetail](ctx, c, mangaKeyPrefix+pathWord, params)
	if err != nil {
		return envelope[comicDetail]{}, "", errors.Wrapf(err, "failed to get manga %s", pathWord)
	}

	return env, pathWord, nil
}

func catalogParams(page int) (url.Values, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page: %d", page)
	}

	return url.Values{
		"limit":  []string{strconv.Itoa(catalogLimit)},
		"offset": []string{strconv.Itoa((page - 1) * catalogLimit)},
	}, nil
}

// setHeaders identifies the client as the official app.
func setHeaders(h http.Header) {
	h.Set("User-Agent", "COPY/"+appVersion)
	h.Set("Accept", "application/json")
	h.Set("source", "copyApp")
	h.Set("platform", platformCode)
	h.Set("webp", "1")
	h.Set("Referer", "com.copymanga.app-"+appVersion)
}

// ImageHeaders are sent with page image requests, the image hosts check the
// app identity but not the api headers.
func ImageHeaders(h http.Header) {
	h.Set("User-Agent", "COPY/"+appVersion)
	h.Set("Referer", "com.copymanga.app-"+appVersion)
}

func (c *Copymanga) newRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, err
	}

	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	setHeaders(req.Header)

	return req, nil
}

func fetchEnvelope[T any](ctx context.Context, c *Copymanga, path string, params url.Values) (envelope[T], error) {
	req, err := c.newRequest(ctx, path, params)
	if err != nil {
		return envelope[T]{}, err
	}

	body, err := c.Client.Fetch(req)
	if err != nil {
		return envelope[T]{}, err
	}

	return decode[T](body)
}
