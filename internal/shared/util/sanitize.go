package util

import (
	"errors"
	"path"
	"strings"
)

// ErrInvalidFileName is returned for names that reduce to nothing usable.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName keeps only the final path element of a client supplied
// name and strips characters that break multipart headers.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	s = path.Base(s)
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." || s == "/" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
