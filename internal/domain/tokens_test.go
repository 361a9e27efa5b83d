package domain

import (
	"reflect"
	"testing"
)

func TestTitleKeywords(t *testing.T) {
	tax := DefaultTaxonomy()

	tests := []struct {
		name     string
		title    string
		expected []string
	}{
		{
			name:     "filename with underscores",
			title:    "Q3_Report_Final.pdf",
			expected: []string{"report", "final"},
		},
		{
			name:     "stopwords and short words dropped",
			title:    "The Art of Computer Programming",
			expected: []string{"computer", "programming"},
		},
		{
			name:     "capped at three",
			title:    "alpha bravo charlie delta echo",
			expected: []string{"alpha", "bravo", "charlie"},
		},
		{
			name:     "nothing survives",
			title:    "a to do",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tax.TitleKeywords(tt.title, 3)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("TitleKeywords(%q) = %v, want %v", tt.title, got, tt.expected)
			}
		})
	}
}

func TestFilenameKeywords(t *testing.T) {
	tax := DefaultTaxonomy()

	tests := []struct {
		name     string
		filename string
		expected []string
	}{
		{
			name:     "camel case and dashes",
			filename: "AnnualBudget-planning_2024.xlsx",
			expected: []string{"annual", "budget", "planning", "2024"},
		},
		{
			name:     "short words dropped",
			filename: "my_cv.pdf",
			expected: []string{},
		},
		{
			name:     "capped at five",
			filename: "one-two-three-four-five-six-seven.txt",
			expected: []string{"one", "two", "three", "four", "five"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tax.FilenameKeywords(tt.filename, 5)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("FilenameKeywords(%q) = %v, want %v", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestCategoryForExtension(t *testing.T) {
	tax := DefaultTaxonomy()

	tests := map[string]string{
		"pdf":   "documents",
		".XLSX": "spreadsheets",
		"pptx":  "presentations",
		"png":   "images",
		"zip":   "documents",
		"":      "documents",
	}
	for ext, want := range tests {
		if got := tax.CategoryForExtension(ext); got != want {
			t.Errorf("CategoryForExtension(%q) = %v, want %v", ext, got, want)
		}
	}
}

func TestPaletteColorFor(t *testing.T) {
	palette := Palette{"#111111", "#222222", "#333333"}

	first := palette.ColorFor("golang")
	for i := 0; i < 5; i++ {
		if got := palette.ColorFor("golang"); got != first {
			t.Fatalf("ColorFor() not deterministic: %v then %v", first, got)
		}
	}

	found := false
	for _, c := range palette {
		if c == first {
			found = true
		}
	}
	if !found {
		t.Errorf("ColorFor() = %v, not in palette", first)
	}

	if got := (Palette{"#ABCDEF"}).ColorFor("anything"); got != "#ABCDEF" {
		t.Errorf("single-colour palette ColorFor() = %v, want #ABCDEF", got)
	}
	if got := (Palette{}).ColorFor("x"); got != FallbackColor {
		t.Errorf("empty palette ColorFor() = %v, want %v", got, FallbackColor)
	}
}

func TestFolderIsDefaultFolder(t *testing.T) {
	tests := []struct {
		name     string
		folder   *Folder
		expected bool
	}{
		{name: "nil", folder: nil, expected: false},
		{name: "flagged", folder: &Folder{Name: "Inbox", IsDefault: true}, expected: true},
		{name: "us spelling", folder: &Folder{Name: "Uncategorized"}, expected: true},
		{name: "uk spelling", folder: &Folder{Name: "uncategorised"}, expected: true},
		{name: "user folder", folder: &Folder{Name: "Reading"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.folder.IsDefaultFolder(); got != tt.expected {
				t.Errorf("IsDefaultFolder() = %v, want %v", got, tt.expected)
			}
		})
	}
}
