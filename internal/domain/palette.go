package domain

// DefaultPalette is the colour set used for tags and folders created by the pipeline.
var DefaultPalette = Palette{
	"#3B82F6", // Blue
	"#8B5CF6", // Purple
	"#10B981", // Green
	"#F59E0B", // Yellow
	"#EF4444", // Red
	"#EC4899", // Pink
	"#F97316", // Orange
	"#06B6D4", // Cyan
	"#14B8A6", // Teal
	"#6366F1", // Indigo
	"#F43F5E", // Rose
	"#84CC16", // Lime
}

// FallbackColor is used when a palette is empty.
const FallbackColor = "#6B7280"

// Palette maps names onto a fixed list of display colours.
type Palette []string

// ColorFor returns the colour for name. The same name always yields the same
// colour for a given palette, so independent creations agree without locking.
func (p Palette) ColorFor(name string) string {
	if len(p) == 0 {
		return FallbackColor
	}
	var hash int32
	for _, r := range name {
		hash = int32(r) + ((hash << 5) - hash)
	}
	idx := int64(hash)
	if idx < 0 {
		idx = -idx
	}
	return p[idx%int64(len(p))]
}
