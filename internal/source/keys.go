package source

import (
	"fmt"
	"strings"
)

const (
	mangaKeyMarker   = "/comic2/"
	chapterKeyMarker = "/chapter2/"
	mangaKeyPrefix   = "/api/v3/comic2/"
	comicPathPrefix  = "/api/v3/comic/"
)

// MangaKey builds the opaque key handed to the host for a comic.
func MangaKey(pathWord string) string {
	return mangaKeyPrefix + pathWord
}

// ParseMangaKey returns the path word of a manga key. A bare path word without
// any slash is accepted as is.
func ParseMangaKey(key string) (string, error) {
	key = strings.TrimSpace(key)

	pathWord := key
	if idx := strings.Index(key, mangaKeyMarker); idx >= 0 {
		pathWord = key[idx+len(mangaKeyMarker):]
	} else if strings.Contains(key, "/") {
		return "", fmt.Errorf("invalid manga key: %q", key)
	}

	pathWord = strings.Trim(pathWord, "/")
	if len(pathWord) == 0 || strings.Contains(pathWord, "/") {
		return "", fmt.Errorf("invalid manga key: %q", key)
	}

	return pathWord, nil
}

func ChapterKey(comicPathWord, chapterID string) string {
	return comicPathPrefix + comicPathWord + chapterKeyMarker + chapterID
}

// ParseChapterKey splits a chapter key built by ChapterKey into the comic
// path and the chapter id.
func ParseChapterKey(key string) (comicPath, chapterID string, err error) {
	parts := strings.Split(strings.TrimSpace(key), chapterKeyMarker)
	if len(parts) != 2 || len(parts[1]) == 0 || strings.Contains(parts[1], "/") {
		return "", "", fmt.Errorf("invalid chapter key: %q", key)
	}

	pathWord, ok := strings.CutPrefix(parts[0], comicPathPrefix)
	if !ok || len(pathWord) == 0 || strings.Contains(pathWord, "/") {
		return "", "", fmt.Errorf("invalid chapter key: %q", key)
	}

	return parts[0], parts[1], nil
}
