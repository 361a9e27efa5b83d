package taxonomy

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"gopkg.in/yaml.v3"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Loader reads a taxonomy override file
type Loader struct {
	filePath string
}

// NewLoader creates a new taxonomy loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load returns the built-in taxonomy with the file's overrides applied.
// An empty path yields the defaults unchanged.
func (l *Loader) Load() (domain.Taxonomy, error) {
	tax := domain.DefaultTaxonomy()
	if l.filePath == "" {
		return tax, nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return tax, fmt.Errorf("failed to read taxonomy file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return tax, fmt.Errorf("failed to parse taxonomy yaml: %w", err)
	}

	if err := Apply(&tax, file); err != nil {
		return domain.DefaultTaxonomy(), err
	}
	return tax, nil
}

// Apply merges file onto tax
func Apply(tax *domain.Taxonomy, file File) error {
	if len(file.Palette) > 0 {
		palette := make(domain.Palette, 0, len(file.Palette))
		for _, c := range file.Palette {
			c = strings.TrimSpace(c)
			if !hexColor.MatchString(c) {
				return fmt.Errorf("invalid palette colour %q: want #RRGGBB", c)
			}
			palette = append(palette, strings.ToUpper(c))
		}
		tax.Palette = palette
	}

	if dc := strings.TrimSpace(file.DefaultCategory); dc != "" {
		tax.DefaultCategory = dc
	}

	for ext, cat := range file.Categories {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		cat = strings.TrimSpace(cat)
		if ext == "" || cat == "" {
			continue
		}
		tax.ExtensionCategories[ext] = cat
	}

	for _, w := range file.Stopwords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			tax.Stopwords[w] = true
		}
	}
	return nil
}
