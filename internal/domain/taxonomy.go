package domain

import (
	"strings"
	"time"
)

// Default folder names recognised as "not deliberately chosen by the user".
var defaultFolderNames = []string{"Uncategorized", "Uncategorised"}

// Tag is a per-scope label. (user, persona, name) is unique.
type Tag struct {
	ID    string `json:"id"`
	Scope Scope  `json:"scope"`
	Name  string `json:"name"`
	Color string `json:"color"`

	// UsageCount is informational; the pipeline does not maintain it.
	UsageCount int64 `json:"usageCount"`

	CreatedAt time.Time `json:"createdAt"`
}

// Folder groups resources within a scope. (user, persona, name) is unique.
type Folder struct {
	ID          string    `json:"id"`
	Scope       Scope     `json:"scope"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon,omitempty"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsDefaultFolder reports whether f is the per-scope fallback folder,
// either by flag or by its conventional name.
func (f *Folder) IsDefaultFolder() bool {
	if f == nil {
		return false
	}
	if f.IsDefault {
		return true
	}
	name := strings.TrimSpace(f.Name)
	for _, d := range defaultFolderNames {
		if strings.EqualFold(name, d) {
			return true
		}
	}
	return false
}
