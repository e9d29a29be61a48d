package source

import (
	"copymanga/internal/domain"
)

type pagination[T any] struct {
	List   []T `json:"list"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (p pagination[T]) hasNextPage() bool {
	return p.Total > p.Offset+p.Limit
}

type named struct {
	Name string `json:"name"`
}

type comicSummary struct {
	Name     string  `json:"name"`
	PathWord string  `json:"path_word"`
	Cover    string  `json:"cover"`
	Author   []named `json:"author"`
	Theme    []named `json:"theme"`
}

type popularItem struct {
	Type  int          `json:"type"`
	Comic comicSummary `json:"comic"`
}

type latestItem struct {
	Name            string       `json:"name"`
	DatetimeCreated string       `json:"datetime_created"`
	Comic           comicSummary `json:"comic"`
}

func names(list []named) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.Name)
	}

	return out
}

func (s comicSummary) item() domain.CatalogItem {
	return domain.CatalogItem{
		Title:    s.Name,
		Key:      MangaKey(s.PathWord),
		CoverURL: s.Cover,
		Authors:  names(s.Author),
		Genres:   names(s.Theme),
	}
}

func catalogPage[T any](p *pagination[T], summary func(T) comicSummary) domain.CatalogPage {
	items := make([]domain.CatalogItem, 0, len(p.List))
	for _, entry := range p.List {
		items = append(items, summary(entry).item())
	}

	return domain.CatalogPage{
		Items:       items,
		HasNextPage: p.hasNextPage(),
	}
}

// mapPopular treats a missing result set as an empty last page.
func mapPopular(env envelope[pagination[popularItem]]) (domain.CatalogPage, error) {
	if err := env.ok(); err != nil {
		return domain.CatalogPage{}, err
	}

	if env.Results == nil {
		return domain.CatalogPage{Items: []domain.CatalogItem{}}, nil
	}

	return catalogPage(env.Results, func(i popularItem) comicSummary { return i.Comic }), nil
}

func mapLatest(env envelope[pagination[latestItem]]) (domain.CatalogPage, error) {
	if err := env.ok(); err != nil {
		return domain.CatalogPage{}, err
	}

	if env.Results == nil {
		return domain.CatalogPage{Items: []domain.CatalogItem{}}, nil
	}

	return catalogPage(env.Results, func(i latestItem) comicSummary { return i.Comic }), nil
}

// mapSearch fails on a missing result set, an empty page would read as "no matches".
func mapSearch(env envelope[pagination[comicSummary]]) (domain.CatalogPage, error) {
	results, err := env.result()
	if err != nil {
		return domain.CatalogPage{}, err
	}

	return catalogPage(results, func(s comicSummary) comicSummary { return s }), nil
}
