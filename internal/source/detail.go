package source

import (
	"copymanga/internal/domain"
)

type comicDetail struct {
	Comic  comicInfo `json:"comic"`
	Groups groupMap  `json:"groups"`
}

type comicInfo struct {
	Name        string  `json:"name"`
	PathWord    string  `json:"path_word"`
	Cover       string  `json:"cover"`
	Author      []named `json:"author"`
	Theme       []named `json:"theme"`
	Brief       string  `json:"brief"`
	Removed     bool    `json:"b_404"`
	Hidden      bool    `json:"b_hidden"`
	LastChapter *named  `json:"last_chapter"`
}

// statusOf prefers removed over hidden.
func statusOf(removed, hidden bool) domain.Status {
	switch {
	case removed:
		return domain.StatusCancelled
	case hidden:
		return domain.StatusLicensed
	default:
		return domain.StatusUnknown
	}
}

func mapDetail(env envelope[comicDetail]) (domain.MangaDetail, error) {
	results, err := env.result()
	if err != nil {
		return domain.MangaDetail{}, err
	}

	comic := results.Comic

	detail := domain.MangaDetail{
		Title:       comic.Name,
		Description: comic.Brief,
		CoverURL:    comic.Cover,
		Genres:      names(comic.Theme),
		Authors:     names(comic.Author),
		Status:      statusOf(comic.Removed, comic.Hidden),
		Key:         MangaKey(comic.PathWord),
		Groups:      make([]domain.ChapterGroup, 0, len(results.Groups)),
	}

	if comic.LastChapter != nil {
		detail.LastChapter = comic.LastChapter.Name
	}

	for _, g := range results.Groups {
		detail.Groups = append(detail.Groups, domain.ChapterGroup{Key: g.Key, Name: g.Name})
	}

	return detail, nil
}
