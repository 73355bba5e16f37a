package ingest

import (
	"regexp"
	"strings"

	"github.com/simp-lee/epub"
)

// Metadata defaults used when the container carries no usable field.
const (
	DefaultAuthor = "Unknown"
	DefaultGenre  = "General"
)

// malformedAuthorSentinel is emitted by a known broken exporter in place of a
// real creator name.
const malformedAuthorSentinel = "0"

// Metadata is the best-effort bibliographic record read from an e-book.
type Metadata struct {
	Title    string
	Author   string
	Synopsis string
	Genre    string
}

var markupTagPattern = regexp.MustCompile(`<[^>]*>`)

// ExtractMetadata reads bibliographic fields from the EPUB at path. It never
// fails: an unreadable or metadata-less container yields the default record.
func ExtractMetadata(path string, opts Options) Metadata {
	md := Metadata{Author: DefaultAuthor, Genre: DefaultGenre}

	book, err := epub.Open(path)
	if err != nil {
		return md
	}
	defer book.Close()

	meta := book.Metadata()

	if len(meta.Titles) > 0 {
		md.Title = meta.Titles[0]
	}

	if len(meta.Authors) > 0 {
		name := strings.TrimSpace(meta.Authors[0].Name)
		if name != "" && name != malformedAuthorSentinel {
			md.Author = name
		}
	}

	if desc := strings.TrimSpace(meta.Description); desc != "" {
		md.Synopsis = strings.TrimSpace(stripMarkup(desc))
	}

	if len(meta.Subjects) > 0 {
		md.Genre = truncateWithEllipsis(strings.Join(meta.Subjects, ", "), opts.GenreMaxChars)
	}

	return md
}

// stripMarkup removes markup tags from a string without parsing it. Good
// enough for description fields, where tags are decoration rather than
// structure.
func stripMarkup(s string) string {
	return markupTagPattern.ReplaceAllString(s, "")
}

// truncateWithEllipsis caps s at max characters, replacing the tail with "..."
// when it is cut.
func truncateWithEllipsis(s string, max int) string {
	if max <= 3 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
