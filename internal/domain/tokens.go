package domain

import (
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// GenericDocumentTag is emitted when no keyword survives filtering.
	GenericDocumentTag = "document"

	// DefaultCategory is used for documents whose extension is unknown.
	DefaultCategory = "documents"
)

// DefaultStopwords are dropped from title and filename keywords.
var DefaultStopwords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by", "document",
}

// DefaultExtensionCategories maps lowercase file extensions to a category name.
var DefaultExtensionCategories = map[string]string{
	"pdf":  "documents",
	"doc":  "documents",
	"docx": "documents",
	"txt":  "documents",
	"xls":  "spreadsheets",
	"xlsx": "spreadsheets",
	"ppt":  "presentations",
	"pptx": "presentations",
	"jpg":  "images",
	"jpeg": "images",
	"png":  "images",
	"gif":  "images",
}

// Taxonomy bundles the tunable vocabulary used by fallback generation and
// tag/folder creation.
type Taxonomy struct {
	Palette             Palette
	Stopwords           map[string]bool
	ExtensionCategories map[string]string
	DefaultCategory     string
}

// DefaultTaxonomy returns the built-in vocabulary.
func DefaultTaxonomy() Taxonomy {
	stop := make(map[string]bool, len(DefaultStopwords))
	for _, w := range DefaultStopwords {
		stop[w] = true
	}
	cats := make(map[string]string, len(DefaultExtensionCategories))
	for k, v := range DefaultExtensionCategories {
		cats[k] = v
	}
	return Taxonomy{
		Palette:             append(Palette(nil), DefaultPalette...),
		Stopwords:           stop,
		ExtensionCategories: cats,
		DefaultCategory:     DefaultCategory,
	}
}

// CategoryForExtension looks up ext (with or without dot, any case).
func (t Taxonomy) CategoryForExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if c, ok := t.ExtensionCategories[ext]; ok {
		return c
	}
	if t.DefaultCategory != "" {
		return t.DefaultCategory
	}
	return DefaultCategory
}

// TitleKeywords extracts up to max keywords from a title: lowercase words
// longer than three characters that are not stopwords.
func (t Taxonomy) TitleKeywords(title string, max int) []string {
	words := splitWords(strings.ToLower(title))
	out := make([]string, 0, max)
	for _, w := range words {
		if len(out) == max {
			break
		}
		if len([]rune(w)) <= 3 || t.Stopwords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// FilenameKeywords extracts up to max keywords from a file name. The extension
// is dropped, camelCase is split, and words must be 3 to 19 characters long.
func (t Taxonomy) FilenameKeywords(filename string, max int) []string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	words := splitWords(strings.ToLower(splitCamel(base)))
	out := make([]string, 0, max)
	seen := make(map[string]bool, max)
	for _, w := range words {
		if len(out) == max {
			break
		}
		n := len([]rune(w))
		if n <= 2 || n >= 20 || t.Stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// Extension returns the lowercase extension of filename without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// splitCamel inserts a space before each upper-case letter that follows a
// lower-case letter or digit: "AnnualReport2024" -> "Annual Report2024".
func splitCamel(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
