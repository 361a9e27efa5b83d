package domain

// UpdateSet is the sparse patch decided by merging or fallback generation.
// A field is only set when it is actually being written. Tag and category
// names are staged here and resolved to identifiers afterwards.
type UpdateSet struct {
	Title       *string
	Description *string

	// TagNames are raw names awaiting resolution to tag IDs.
	TagNames []string

	// Category is a folder name awaiting resolution to a folder ID.
	Category string
}

// IsEmpty reports whether the set would change nothing.
func (u UpdateSet) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && len(u.TagNames) == 0 && u.Category == ""
}

// Fields lists the resource fields this set writes, for outcome reporting.
func (u UpdateSet) Fields() []string {
	var fields []string
	if u.Title != nil {
		fields = append(fields, "title")
	}
	if u.Description != nil {
		fields = append(fields, "description")
	}
	if len(u.TagNames) > 0 {
		fields = append(fields, "tags")
	}
	if u.Category != "" {
		fields = append(fields, "folderId")
	}
	return fields
}

// ResourcePatch is the persisted form of an UpdateSet: names have become IDs.
// Nil fields are left untouched by the store.
type ResourcePatch struct {
	Title       *string
	Description *string
	TagIDs      []string
	FolderID    *string
}

// IsEmpty reports whether the patch would change nothing.
func (p ResourcePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.TagIDs == nil && p.FolderID == nil
}

// Apply writes the patch onto r. Stores call it on the freshly read record,
// so title, description and tags are only filled while still empty: a value
// the user saved after the pass selected r is never overwritten.
func (p ResourcePatch) Apply(r *Resource) {
	if p.Title != nil && !r.HasTitle() {
		r.Title = *p.Title
	}
	if p.Description != nil && !r.HasDescription() {
		r.Description = *p.Description
	}
	if p.TagIDs != nil && !r.HasTags() {
		r.TagIDs = append([]string(nil), p.TagIDs...)
	}
	if p.FolderID != nil {
		r.FolderID = *p.FolderID
	}
}

// Ptr returns a pointer to s.
func Ptr(s string) *string {
	return &s
}
