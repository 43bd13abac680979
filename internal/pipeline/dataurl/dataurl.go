// Package dataurl encodes and decodes base64 image data URLs.
package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

var ErrInvalid = errors.New("invalid image data url")

var prefixPattern = regexp.MustCompile(`^data:(image/[\w.+-]+);base64,`)

// Decode returns the raw bytes and the MIME type of an image data URL. A bare
// base64 string without the data: prefix is accepted and its type sniffed.
func Decode(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", fmt.Errorf("%w: empty", ErrInvalid)
	}

	mimeType := ""
	if m := prefixPattern.FindStringSubmatch(s); m != nil {
		mimeType = m[1]
		s = s[len(m[0]):]
	} else if strings.HasPrefix(s, "data:") {
		return nil, "", fmt.Errorf("%w: unsupported prefix", ErrInvalid)
	}

	raw, err := decodeBase64(s)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("%w: no payload", ErrInvalid)
	}
	if mimeType == "" {
		mimeType = DetectMIME(raw)
	}
	return raw, mimeType, nil
}

// Encode builds a data URL; an empty mimeType is sniffed from the bytes.
func Encode(raw []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = DetectMIME(raw)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

// DetectMIME sniffs an image MIME type, defaulting to image/jpeg.
func DetectMIME(raw []byte) string {
	ct := http.DetectContentType(raw)
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	return "image/jpeg"
}

// IsDataURL reports whether s carries an image data URL prefix.
func IsDataURL(s string) bool {
	return prefixPattern.MatchString(s)
}

func decodeBase64(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return raw, nil
	}
	// Some producers drop the padding.
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}
