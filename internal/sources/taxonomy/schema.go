package taxonomy

// File is the top-level structure of the taxonomy YAML file.
//
//	palette: ["#3B82F6", "#10B981"]
//	defaultCategory: documents
//	categories:
//	  md: notes
//	stopwords: [draft, final]
type File struct {
	// Palette replaces the built-in colours when non-empty.
	Palette []string `yaml:"palette,omitempty"`

	// DefaultCategory is used for unknown extensions.
	DefaultCategory string `yaml:"defaultCategory,omitempty"`

	// Categories maps file extensions to category names, merged over the defaults.
	Categories map[string]string `yaml:"categories,omitempty"`

	// Stopwords are added to the built-in stoplist.
	Stopwords []string `yaml:"stopwords,omitempty"`
}
