package cmd

import (
	"fmt"
	"strings"
	"time"

	"copymanga/internal/domain"
	"copymanga/internal/source"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List popular manga",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		result, err := a.source.ListPopular(cmd.Context(), page)
		if err != nil {
			return err
		}

		printCatalog(result)
		return nil
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "List the latest updated manga",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		result, err := a.source.ListLatest(cmd.Context(), page)
		if err != nil {
			return err
		}

		printCatalog(result)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search manga by title, a blank query lists popular manga",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		result, err := a.source.Search(cmd.Context(), strings.Join(args, " "), page)
		if err != nil {
			return err
		}

		printCatalog(result)
		return nil
	},
}

var detailCmd = &cobra.Command{
	Use:   "detail <manga>",
	Short: "Show the details of a manga",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		detail, err := a.source.GetDetail(cmd.Context(), mangaKey(args[0]))
		if err != nil {
			return err
		}

		fmt.Println("Title:", detail.Title)
		fmt.Println("Key:", detail.Key)
		fmt.Println("Author:", detail.Author())
		fmt.Println("Genre:", detail.Genre())
		fmt.Println("Status:", detail.Status)
		if detail.LastChapter != "" {
			fmt.Println("Last chapter:", detail.LastChapter)
		}
		fmt.Println("Cover:", detail.CoverURL)

		for _, g := range detail.Groups {
			fmt.Printf("Group: %s (%s)\n", g.Name, g.Key)
		}

		fmt.Println()
		fmt.Println(detail.Description)

		return nil
	},
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters <manga>",
	Short: "List the chapters of a manga, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		chapters, err := a.source.ListChapters(cmd.Context(), mangaKey(args[0]))
		if err != nil {
			return err
		}

		for i, c := range chapters {
			uploaded := "-"
			if c.DateUpload > 0 {
				uploaded = time.UnixMilli(c.DateUpload).Format(time.DateOnly)
			}

			fmt.Printf("%4d  %s  %s  %s\n", i+1, uploaded, c.Name, c.Key)
		}

		return nil
	},
}

var pagesCmd = &cobra.Command{
	Use:   "pages <chapterKey>",
	Short: "List the page image urls of a chapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateChapterKey(args[0]); err != nil {
			return err
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		pages, err := a.source.ListPages(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		for _, p := range pages {
			fmt.Printf("%03d  %s\n", p.Index+1, p.ImageURL)
		}

		return nil
	},
}

func printCatalog(result domain.CatalogPage) {
	for _, item := range result.Items {
		fmt.Printf("%s  [%s]  %s\n", item.Title, item.Author(), item.Key)
	}

	if result.HasNextPage {
		fmt.Printf("more results on page %d\n", page+1)
	}
}

// mangaKey accepts both full keys and bare path words.
func mangaKey(input string) string {
	pathWord, err := source.ParseMangaKey(strings.TrimSpace(input))
	if err != nil {
		return input
	}

	return source.MangaKey(pathWord)
}

func validateChapterKey(key string) error {
	_, chapterID, err := source.ParseChapterKey(key)
	if err != nil {
		return err
	}

	if _, err := uuid.Parse(chapterID); err != nil {
		return errors.Wrapf(err, "invalid chapter id %q", chapterID)
	}

	return nil
}
