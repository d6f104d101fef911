// Package assets provides the CSS style presets placed inside rendered images.
//
// # Loader Architecture
//
//	StyleLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in presets embedded at compile time
//	    ├── FilesystemLoader  - presets from a custom directory on disk
//	    └── StyleResolver     - custom directory first, embedded fallback
//
// A custom directory holds one file per preset:
//
//	{basePath}/
//	└── styles/
//	    └── {name}.css
//
// Style names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
