package domain

import (
	"strings"
	"time"
)

// Kind is the resource type. Only url and document resources are curated.
type Kind string

const (
	KindURL      Kind = "url"
	KindDocument Kind = "document"
)

// Scope is the (user, persona) pair that partitions all data.
// Every query and mutation issued by the pipeline carries one.
type Scope struct {
	UserID  string `json:"userId"`
	Persona string `json:"persona"`
}

// IsZero reports whether the scope is missing either half.
func (s Scope) IsZero() bool {
	return s.UserID == "" || s.Persona == ""
}

// FileInfo describes the uploaded file behind a document resource.
type FileInfo struct {
	Path     string `json:"path,omitempty"`
	Key      string `json:"key,omitempty"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// Resource is a saved link or document.
//
// The pipeline only ever fills in empty fields; it never rewrites what
// the user already entered.
type Resource struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier.
	ID string `json:"id"`

	// Scope is the owning (user, persona) pair, fixed at creation.
	Scope Scope `json:"scope"`

	// Kind is either url or document.
	Kind Kind `json:"type"`

	// ─────────────────────────────
	// Content (enriched by the pipeline)
	// ─────────────────────────────

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// URL is set for url resources only.
	URL string `json:"url,omitempty"`

	// File is set for document resources only.
	File *FileInfo `json:"file,omitempty"`

	// ─────────────────────────────
	// Organisation
	// ─────────────────────────────

	// FolderID is empty when the resource lives in the default folder.
	FolderID string `json:"folderId,omitempty"`

	// TagIDs holds unique tag references. Order carries no meaning.
	TagIDs []string `json:"tags,omitempty"`

	IsFavorite bool `json:"isFavorite"`
	IsArchived bool `json:"isArchived"`
	IsTrashed  bool `json:"isTrashed"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasDescription reports whether a non-blank description exists.
func (r *Resource) HasDescription() bool {
	return strings.TrimSpace(r.Description) != ""
}

// HasTitle reports whether a non-blank title exists.
func (r *Resource) HasTitle() bool {
	return strings.TrimSpace(r.Title) != ""
}

// HasTags reports whether at least one tag is attached.
func (r *Resource) HasTags() bool {
	return len(r.TagIDs) > 0
}

// NeedsEnrichment reports whether the resource is a curation candidate:
// a url or document lacking a description or tags.
func (r *Resource) NeedsEnrichment() bool {
	if r.Kind != KindURL && r.Kind != KindDocument {
		return false
	}
	return !r.HasDescription() || !r.HasTags()
}

// BestKnownTitle returns the title, falling back to the uploaded file name.
func (r *Resource) BestKnownTitle() string {
	if r.HasTitle() {
		return strings.TrimSpace(r.Title)
	}
	if r.File != nil {
		return strings.TrimSpace(r.File.Name)
	}
	return ""
}
