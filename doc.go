// Package html2uri renders HTML fragments to PNG data URIs using headless Chrome.
//
// # Quick Start
//
// Create a renderer, render content, and close when done:
//
//	r := html2uri.NewRenderer(html2uri.WithTimeout(30 * time.Second))
//	defer r.Close()
//
//	res, err := r.Render(ctx, html2uri.Settings{Width: 100, Height: 50}, "<b>Hi</b>")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	img.Src = res.URI
//
// The result carries the PNG data URI (res.URI) and the composed SVG
// document (res.Document) for debugging. Use Result.PNG for raw bytes.
//
// # Render Pipeline
//
// Each request goes through these stages:
//
//  1. Composing: settings are validated and the content is wrapped in an
//     SVG foreignObject document (Compose)
//  2. Loading: the document is handed to an image decode as a data URI
//  3. Drawing: the decoded image is drawn at the origin of a fresh canvas
//  4. Extracting: the canvas is serialized as a PNG data URI
//  5. Cached: the URI is stored under the raw content string
//
// Validation and decode failures (ErrConfig, ErrDecode) are returned before
// the browser is touched. Browser failures are wrapped with ErrRaster.
//
// # Caching
//
// Renders are cached by content alone: once a content string has rendered,
// later requests with the same content get the stored URI whatever their
// settings. Use WithSettingsInCacheKey to key on settings too, WithCache to
// supply a shared or persistent Cache, and NullCache to disable caching.
//
// # Parallel Processing
//
// RendererPool manages several browser instances that share one cache:
//
//	pool := html2uri.NewRendererPool(4, html2uri.WithTimeout(30*time.Second))
//	defer pool.Close()
//
//	res, err := pool.Render(ctx, settings, content)
//
// # Attribute Host
//
// Element mimics a custom element: setting its data-content attribute starts
// a render and the outcome is published as data-url or data-error.
//
// # Browser Requirements
//
// Rendering requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package html2uri
