package assets

// DefaultStyle is the name of the built-in style applied when none is chosen.
const DefaultStyle = "default"

var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in CSS style by name.
// Returns ErrStyleNotFound if the style does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// StyleNames lists the built-in style names.
func StyleNames() []string {
	return defaultLoader.Names()
}
