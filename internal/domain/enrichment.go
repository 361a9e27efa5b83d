package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MinTitleLength is the shortest fetched title considered usable.
const MinTitleLength = 5

// ConfidenceThreshold is the minimum confidence an enrichment answer needs to be merged.
const ConfidenceThreshold = 0.7

// FetchedMetadata is the best-effort result of fetching a resource's page.
// Empty strings mean "absent"; an all-empty value is a normal outcome.
type FetchedMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Content     string `json:"content,omitempty"`
}

// IsEmpty reports whether nothing at all was extracted.
func (m FetchedMetadata) IsEmpty() bool {
	return m.Title == "" && m.Description == "" && m.Image == "" && m.Content == ""
}

// EnrichmentNeeds tells the reasoning service which fields to produce.
type EnrichmentNeeds struct {
	Title       bool `json:"title"`
	Description bool `json:"description"`
	Tags        bool `json:"tags"`
}

// Any reports whether at least one field still needs the reasoning service.
func (n EnrichmentNeeds) Any() bool {
	return n.Title || n.Description || n.Tags
}

// PlanNeeds decides which fields still need the external reasoning call.
// Title and description are only requested when the free metadata is missing
// or too short; tags are always requested.
func PlanNeeds(_ *Resource, meta FetchedMetadata) EnrichmentNeeds {
	title := strings.TrimSpace(meta.Title)
	return EnrichmentNeeds{
		Title:       len([]rune(title)) < MinTitleLength,
		Description: strings.TrimSpace(meta.Description) == "",
		Tags:        true,
	}
}

// EnrichmentResult is the reasoning service's answer, with tags already
// normalised to a clean list.
type EnrichmentResult struct {
	SuggestedTitle string   `json:"suggestedTitle,omitempty"`
	Description    string   `json:"description,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Category       string   `json:"category,omitempty"`
	Confidence     *float64 `json:"confidence,omitempty"`
}

// LowConfidence reports whether a confidence score is present and below threshold.
func (r EnrichmentResult) LowConfidence() bool {
	return r.Confidence != nil && *r.Confidence < ConfidenceThreshold
}

// HasUsableData reports whether the answer carries a description, tags or a title.
func (r EnrichmentResult) HasUsableData() bool {
	return strings.TrimSpace(r.Description) != "" ||
		len(r.Tags) > 0 ||
		strings.TrimSpace(r.SuggestedTitle) != ""
}

// TagList is the tag field as it arrives over the wire: either a JSON array
// of strings or one comma-delimited string.
type TagList struct {
	list      []string
	delimited string
}

// UnmarshalJSON accepts null, a string array or a delimited string.
func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = TagList{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode tag string: %w", err)
		}
		*t = TagList{delimited: s}
	case '[':
		var raw []any
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode tag list: %w", err)
		}
		list := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				list = append(list, s)
			}
		}
		*t = TagList{list: list}
	default:
		return fmt.Errorf("tags must be a string or an array, got %s", string(data))
	}
	return nil
}

// Normalize flattens either shape into trimmed, non-blank, de-duplicated names.
func (t TagList) Normalize() []string {
	raw := t.list
	if raw == nil && t.delimited != "" {
		raw = strings.Split(t.delimited, ",")
	}
	return CleanTagNames(raw)
}

// NewTagList builds a list-shaped TagList.
func NewTagList(names ...string) TagList {
	return TagList{list: names}
}

// NewDelimitedTagList builds a string-shaped TagList.
func NewDelimitedTagList(s string) TagList {
	return TagList{delimited: s}
}

// CleanTagNames trims names, drops blanks and removes exact duplicates.
func CleanTagNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
