package domain

import (
	"context"
	"strings"
)

type Source interface {
	String() string
	ListPopular(ctx context.Context, page int) (CatalogPage, error)
	ListLatest(ctx context.Context, page int) (CatalogPage, error)
	Search(ctx context.Context, query string, page int) (CatalogPage, error)
	GetDetail(ctx context.Context, key string) (MangaDetail, error)
	ListChapters(ctx context.Context, key string) ([]Chapter, error)
	ListPages(ctx context.Context, chapterKey string) ([]Page, error)
}

type CatalogItem struct {
	Title    string
	Key      string
	CoverURL string
	Authors  []string
	Genres   []string
}

// Author joins the authors the way the host displays them.
func (c CatalogItem) Author() string {
	return strings.Join(c.Authors, ", ")
}

func (c CatalogItem) Genre() string {
	return strings.Join(c.Genres, ", ")
}

type CatalogPage struct {
	Items       []CatalogItem
	HasNextPage bool
}

type Status int

const (
	StatusUnknown Status = iota
	StatusOngoing
	StatusCancelled
	StatusLicensed
)

func (s Status) String() string {
	switch s {
	case StatusOngoing:
		return "ONGOING"
	case StatusCancelled:
		return "CANCELLED"
	case StatusLicensed:
		return "LICENSED"
	default:
		return "UNKNOWN"
	}
}

type MangaDetail struct {
	Title       string
	Description string
	CoverURL    string
	Genres      []string
	Authors     []string
	Status      Status
	Key         string
	LastChapter string
	// Groups are in response order, the first one is the default group.
	Groups []ChapterGroup
}

func (m MangaDetail) Author() string {
	return strings.Join(m.Authors, ", ")
}

func (m MangaDetail) Genre() string {
	return strings.Join(m.Genres, ", ")
}

type ChapterGroup struct {
	Key  string
	Name string
}

type Chapter struct {
	Name string
	// Number is a counter over all groups, not the server's per group index.
	Number     float32
	DateUpload int64
	Key        string
}

type Page struct {
	Index    int
	ImageURL string
}
