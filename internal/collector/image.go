package collector

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/f3rmion/moodlog/internal/journal"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxImageSize is the largest image accepted, in bytes.
const MaxImageSize = 10 << 20

// ImageExtensions lists the file extensions offered by the image picker.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

// IsImageFile reports whether name has one of ImageExtensions.
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// InspectImage checks that path is a decodable image within MaxImageSize
// and describes it.
func InspectImage(path string) (*journal.Attachment, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving image path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filepath.Base(abs))
	}
	if info.Size() > MaxImageSize {
		return nil, fmt.Errorf("image is %s, the limit is 10 MB", FormatSize(info.Size()))
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s is not a supported image: %w", filepath.Base(abs), err)
	}

	return &journal.Attachment{
		Mode:      journal.ModeImage,
		ImagePath: abs,
		ImageName: filepath.Base(abs),
		ImageSize: info.Size(),
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, nil
}

// FormatSize renders a byte count in megabytes with two decimals.
func FormatSize(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/1024/1024)
}
