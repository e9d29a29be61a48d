package download

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"copymanga/internal/domain"
	"copymanga/internal/files"
	"copymanga/internal/sharedhttp"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

type Format string

const (
	FormatCBZ Format = "cbz"
	FormatPDF Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCBZ:
		return FormatCBZ, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", s)
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

type Downloader struct {
	Client  sharedhttp.Fetcher
	Header  func(h http.Header)
	Workers int
}

func New(client sharedhttp.Fetcher, header func(h http.Header)) *Downloader {
	return &Downloader{
		Client:  client,
		Header:  header,
		Workers: defaultWorkers,
	}
}

// Chapter downloads the pages of a chapter and packs them into outputPath.
// Any failed page aborts the chapter so no partial archive is written.
func (d *Downloader) Chapter(ctx context.Context, outputPath string, pages []domain.Page, format Format) error {
	if len(pages) == 0 {
		return fmt.Errorf("chapter has no pages")
	}

	temp, err := os.MkdirTemp("", "copymanga-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(temp)

	workers := d.Workers
	if workers < 1 {
		workers = defaultWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, page := range pages {
		g.Go(func() error {
			filenameNoExt := filepath.Join(temp, fmt.Sprintf("%03d", page.Index+1))

			if err := d.singleFile(gctx, page.ImageURL, filenameNoExt); err != nil {
				return errors.Wrapf(err, "failed to download page %d", page.Index+1)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	switch format {
	case FormatPDF:
		return files.CreatePDF(temp, outputPath)
	default:
		return files.CreateCbzArchive(temp, outputPath)
	}
}

// singleFile downloads a single file, the extension is taken from its content
func (d *Downloader) singleFile(ctx context.Context, url, filenameNoExt string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if d.Header != nil {
		d.Header(req.Header)
	}

	data, err := d.Client.Fetch(req)
	if err != nil {
		return err
	}

	filename, err := appendImageExtension(data, filenameNoExt)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0o644)
}

func appendImageExtension(data []byte, filename string) (string, error) {
	contentType := http.DetectContentType(data)

	switch contentType {
	case "image/jpeg":
		return filename + ".jpg", nil
	case "image/png":
		return filename + ".png", nil
	case "image/gif":
		return filename + ".gif", nil
	case "image/webp":
		return filename + ".webp", nil
	default:
		return filename, fmt.Errorf("unsupported content type: %s", contentType)
	}
}
