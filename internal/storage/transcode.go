package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// TranscodeForBrowser converts a stored image into a format every browser
// renders inline, returning the (possibly new) stored name.
//
// BMP and TIFF are on the upload allow-list because phones and scanners
// produce them, but browsers won't display them in an <img> tag. Those get
// re-encoded as PNG under a fresh name; the original file is then removed.
//
// NON-FATAL BY CONTRACT: any failure here logs and returns the ORIGINAL
// name with a nil error — the upload proceeds with the file as-is rather
// than failing because a nice-to-have conversion didn't work.
func (s *DiskStore) TranscodeForBrowser(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	var decode func(*bytes.Reader) (image.Image, error)
	switch ext {
	case ".bmp":
		decode = func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) }
	case ".tiff", ".tif":
		decode = func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) }
	default:
		// Already browser-friendly (or not an image at all) — nothing to do.
		return name, nil
	}

	clean, err := cleanName(name)
	if err != nil {
		return name, nil
	}

	data, err := os.ReadFile(filepath.Join(s.dir, clean))
	if err != nil {
		s.logger.Warn("transcode: reading original failed, keeping as-is",
			slog.String("file", clean),
			slog.String("error", err.Error()),
		)
		return name, nil
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		s.logger.Warn("transcode: decode failed, keeping original",
			slog.String("file", clean),
			slog.String("error", err.Error()),
		)
		return name, nil
	}

	pngName := fmt.Sprintf("%s.png", uuid.NewString())
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.logger.Warn("transcode: png encode failed, keeping original",
			slog.String("file", clean),
			slog.String("error", err.Error()),
		)
		return name, nil
	}
	if err := s.Save(pngName, buf.Bytes()); err != nil {
		s.logger.Warn("transcode: writing converted file failed, keeping original",
			slog.String("file", clean),
			slog.String("error", err.Error()),
		)
		return name, nil
	}

	// Converted copy is safely on disk; the original can go. A failed
	// remove just leaves a stray file behind.
	if err := s.Delete(clean); err != nil {
		s.logger.Warn("transcode: removing original failed",
			slog.String("file", clean),
			slog.String("error", err.Error()),
		)
	}

	return pngName, nil
}
