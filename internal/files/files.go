package files

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // registers gif for DecodeConfig
	_ "image/jpeg" // registers jpeg for DecodeConfig
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/webp"
)

func IsValidLocation(location string) error {
	if _, err := os.Stat(location); err != nil {
		return err
	}

	return nil
}

// CreateCbzArchive creates a zip archive named cbzPath and adds all images from sourceDir to it
func CreateCbzArchive(sourceDir, cbzPath string) error {
	err := os.MkdirAll(filepath.Dir(cbzPath), os.ModePerm)
	if err != nil {
		return err
	}

	cbzFile, err := os.Create(cbzPath)
	if err != nil {
		return err
	}
	defer cbzFile.Close()

	writeBuf := bufio.NewWriter(cbzFile)
	defer writeBuf.Flush()

	zipWriter := zip.NewWriter(writeBuf)
	defer zipWriter.Close()

	return filepath.Walk(sourceDir, func(imgPath string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		if !isImage(imgPath) {
			return nil
		}

		return addFileToZip(zipWriter, imgPath, info.Name())
	})
}

// CreatePDF creates a pdf file named pdfPath with one page per image in sourceDir.
// WebP images are converted to PNG since fpdf can't embed them.
func CreatePDF(sourceDir, pdfPath string) error {
	err := os.MkdirAll(filepath.Dir(pdfPath), os.ModePerm)
	if err != nil {
		return err
	}

	pdf := fpdf.New(fpdf.OrientationPortrait, fpdf.UnitMillimeter, "", "")

	walkErr := filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		if !isImage(path) {
			return nil
		}

		var pdfInfo *fpdf.ImageInfoType
		var options fpdf.ImageOptions

		if strings.EqualFold(filepath.Ext(path), ".webp") {
			converted, err := webpToPNG(path)
			if err != nil {
				return err
			}

			options = fpdf.ImageOptions{ImageType: "PNG"}
			pdfInfo = pdf.RegisterImageOptionsReader(path, options, converted)
		} else {
			pdfInfo = pdf.RegisterImageOptions(path, options)
		}

		if !pdf.Ok() || pdfInfo == nil {
			return fmt.Errorf("failed to register image %s: %w", info.Name(), pdf.Error())
		}

		imgWidth, imgHeight := pdfInfo.Extent()

		// wide spreads get a landscape page
		if imgWidth > imgHeight {
			pdf.AddPageFormat(fpdf.OrientationLandscape, fpdf.SizeType{Wd: imgHeight, Ht: imgWidth})
		} else {
			pdf.AddPageFormat(fpdf.OrientationPortrait, fpdf.SizeType{Wd: imgWidth, Ht: imgHeight})
		}

		pdf.ImageOptions(path, 0, 0, imgWidth, imgHeight, false, options, 0, "")

		return nil
	})
	if walkErr != nil {
		pdf.Close()
		return walkErr
	}

	return pdf.OutputFileAndClose(pdfPath)
}

// isImage reports whether the file decodes as a registered image format.
func isImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, _, err = image.DecodeConfig(bufio.NewReader(f))
	return err == nil
}

func webpToPNG(path string) (io.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := webp.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to decode webp %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return &buf, nil
}

// addFileToZip adds a single file to the zip archive
func addFileToZip(zipWriter *zip.Writer, filePath, fileName string) error {
	fileToZip, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer fileToZip.Close()

	writer, err := zipWriter.Create(fileName)
	if err != nil {
		return err
	}

	readerBuf := bufio.NewReader(fileToZip)

	_, err = io.Copy(writer, readerBuf)
	return err
}
