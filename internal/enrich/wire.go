package enrich

import "github.com/MrSnakeDoc/curator/internal/domain"

// FormFillResourceID is the placeholder identifier sent for interactive prefill.
const FormFillResourceID = "temp-form-fill"

// resourceRequest is the body of POST /agent/resource/enrich for a stored resource.
type resourceRequest struct {
	ResourceID          string                 `json:"resourceId"`
	URL                 *string                `json:"url"`
	Type                domain.Kind            `json:"type"`
	ExistingTitle       *string                `json:"existingTitle"`
	ExistingDescription *string                `json:"existingDescription"`
	Needs               domain.EnrichmentNeeds `json:"needs"`
	UserID              string                 `json:"userId"`
	Persona             string                 `json:"persona"`
}

// formRequest is the body of POST /agent/resource/enrich for form prefill.
// Needs are omitted so the service decides everything.
type formRequest struct {
	ResourceID string `json:"resourceId"`
	URL        string `json:"url"`
	Persona    string `json:"persona"`
	UserID     string `json:"userId"`
}

// response is shared by all endpoints.
type response struct {
	Memory *memory `json:"memory"`
}

type memory struct {
	SuggestedTitle string         `json:"suggestedTitle"`
	Description    string         `json:"description"`
	Tags           domain.TagList `json:"tags"`
	Category       string         `json:"category"`
	Confidence     *float64       `json:"confidence"`
}

// result normalises the wire answer once; nothing downstream sees TagList.
func (r response) result() domain.EnrichmentResult {
	if r.Memory == nil {
		return domain.EnrichmentResult{}
	}
	return domain.EnrichmentResult{
		SuggestedTitle: r.Memory.SuggestedTitle,
		Description:    r.Memory.Description,
		Tags:           r.Memory.Tags.Normalize(),
		Category:       r.Memory.Category,
		Confidence:     r.Memory.Confidence,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
