package ingest

import (
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ExtractFile reads a file as UTF-8 text, falling back to ISO-8859-1 when
// the bytes are not valid UTF-8. Unreadable or missing files yield "", so
// callers can treat extraction failure the same as an empty file.
func ExtractFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}
