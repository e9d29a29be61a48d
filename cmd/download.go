package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"copymanga/internal/domain"
	"copymanga/internal/download"
	"copymanga/internal/files"
	"copymanga/internal/parse"
	"copymanga/internal/sanitize"
	"copymanga/internal/source"
	"copymanga/internal/templater"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the specified chapters of a manga",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		if !cmd.Flags().Changed("first") && !cmd.Flags().Changed("chapters") {
			latest = true
		}

		a, err := newApp(cmd)
		if err != nil {
			fmt.Println("Failed to set up source:", err)
			return
		}

		if downloadDirectory == "" {
			downloadDirectory = a.cfg.Config.DownloadLocation
		}
		if naming == "" {
			naming = a.cfg.Config.NamingTemplate
		}

		if err := files.IsValidLocation(downloadDirectory); err != nil {
			fmt.Println("Invalid location:", err)
			return
		}

		outputFormat, err := download.ParseFormat(format)
		if err != nil {
			fmt.Println("Invalid format:", err)
			return
		}

		key := mangaKey(manga)

		selectedManga, err := a.source.GetDetail(ctx, key)
		if err != nil {
			fmt.Printf("Failed to get manga from %q: %v\n", a.source, err)
			return
		}

		chapters, err := a.source.ListChapters(ctx, key)
		if err != nil {
			fmt.Printf("Failed to get chapters for %q: %v\n", selectedManga.Title, err)
			return
		}

		if len(chapters) == 0 {
			fmt.Printf("No chapters found for %q\n", selectedManga.Title)
			return
		}

		var positions []int

		switch {
		case first:
			positions = []int{1}
		case latest:
			positions = []int{len(chapters)}
		default:
			positions, err = parse.ChapterSelection(chapterNumbers, len(chapters))
			if err != nil {
				fmt.Printf("Failed to parse chapter selection for %q: %v\n", selectedManga.Title, err)
				return
			}
		}

		if len(positions) == 0 {
			fmt.Printf("Failed to find matching chapters in range %s for %q\n", chapterNumbers, selectedManga.Title)
			return
		}

		d := download.New(a.client, source.ImageHeaders)

		// chapters share one rate budget, so they are fetched one after another
		for _, pos := range positions {
			job := chapterJob{
				manga:    selectedManga,
				chapter:  chapterAt(chapters, pos),
				position: pos,
			}

			name, path := job.target(downloadDirectory, naming, outputFormat)

			if _, err := os.Stat(path); err == nil {
				fmt.Printf("Chapter has already been downloaded, skipping %q\n", name)
				continue
			}

			fmt.Printf("Downloading %q...\n", name)
			if err := job.run(ctx, a.source, d, path, outputFormat); err != nil {
				fmt.Printf("Failed to download chapter %q: %v\n", name, err)
				if fatalDownload(err) {
					return
				}
				continue
			}

			fmt.Printf("Finished downloading %q\n", name)
		}
	},
}

type chapterJob struct {
	manga    domain.MangaDetail
	chapter  domain.Chapter
	position int
}

// target returns the templated chapter name and the archive path for it.
func (j chapterJob) target(dir, template string, f download.Format) (string, string) {
	name := templater.New(j.manga, j.chapter, j.position).ExecTemplate(template)

	return name, filepath.Join(dir, sanitize.Filename(j.manga.Title), sanitize.Filename(name)+f.Ext())
}

func (j chapterJob) run(ctx context.Context, s domain.Source, d *download.Downloader, path string, f download.Format) error {
	pages, err := s.ListPages(ctx, j.chapter.Key)
	if err != nil {
		return errors.Wrapf(err, "failed to get image urls for chapter %q", j.chapter.Name)
	}

	return d.Chapter(ctx, path, pages, f)
}

// chapterAt returns the chapter at a 1-based position of the oldest first list.
func chapterAt(chapters []domain.Chapter, position int) domain.Chapter {
	return chapters[position-1]
}

// fatalDownload reports errors that make further requests pointless.
func fatalDownload(err error) bool {
	var rateLimited *domain.RateLimitedError
	return errors.As(err, &rateLimited) || errors.Is(err, context.Canceled)
}
