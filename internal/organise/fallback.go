package organise

import (
	"strings"

	"github.com/MrSnakeDoc/curator/internal/domain"
)

// Fallback builds an update set from local data only. It is used for
// document resources when the reasoning service is down or returns nothing,
// and never touches the folder.
func Fallback(r *domain.Resource, meta domain.FetchedMetadata, tax domain.Taxonomy) domain.UpdateSet {
	var set domain.UpdateSet

	title := r.BestKnownTitle()
	if title == "" {
		title = strings.TrimSpace(meta.Title)
	}

	if !r.HasDescription() {
		name := title
		if name == "" {
			name = "Untitled"
		}
		set.Description = domain.Ptr("Document: " + name)
	}

	if !r.HasTags() {
		tags := tax.TitleKeywords(title, FallbackTagCount)
		if len(tags) == 0 {
			tags = []string{domain.GenericDocumentTag}
		}
		set.TagNames = tags
	}
	return set
}
