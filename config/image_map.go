package config

// ImageMap returns the table of known display names mapped to bundled image
// files. Consulted before a source-image reference is treated as a path or
// URL. Returns a fresh map so callers cannot mutate shared state.
func ImageMap() map[string]string {
	return map[string]string{
		"Mark Zuckerberg": "./images/mark_zuckerberg.png",
		"Elon Musk":       "./images/elon_musk.jpg",
	}
}
