package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nemanja-m/stylize/internal/pipeline/dataurl"
)

// MaxImageBytes bounds a single input file.
const MaxImageBytes = 20 << 20

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// FindImages expands the glob patterns (** supported) and returns the regular
// image files they match, without duplicates, in match order.
func FindImages(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, name := range matches {
			if seen[name] {
				continue
			}
			if _, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
				continue
			}
			info, err := os.Lstat(name)
			if err != nil {
				continue
			}
			if info.Mode().IsRegular() {
				seen[name] = true
				files = append(files, name)
			}
		}
	}
	return files, nil
}

// LoadImage reads an image file into a data URL.
func LoadImage(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > MaxImageBytes {
		return "", fmt.Errorf("%s is %d bytes, limit is %d", path, info.Size(), MaxImageBytes)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%s is empty", path)
	}
	return dataurl.Encode(raw, imageExtensions[strings.ToLower(filepath.Ext(path))]), nil
}

// WriteResult stores a transformed image under dir. Data URLs are decoded to
// an image file, remote URLs are written to a .url file.
func WriteResult(dir, name, result string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	if !dataurl.IsDataURL(result) {
		path := filepath.Join(dir, base+".url")
		return path, os.WriteFile(path, []byte(result+"\n"), 0o644)
	}

	raw, mimeType, err := dataurl.Decode(result)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, base+extensionFor(mimeType))
	return path, os.WriteFile(path, raw, 0o644)
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
