package html2uri

import "errors"

// Sentinel errors for library operations.
var (
	// ErrConfig reports invalid or out-of-range settings. It is always
	// returned before any asynchronous work starts.
	ErrConfig = errors.New("invalid render settings")

	// ErrDecode reports a malformed content payload in document mode.
	ErrDecode = errors.New("content decode failed")

	// ErrRaster reports that the image decode, draw or extraction step
	// did not produce a usable bitmap.
	ErrRaster = errors.New("rasterization failed")

	// Browser errors, always wrapped together with ErrRaster.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")

	// ErrClosed is returned by Render after Close.
	ErrClosed = errors.New("renderer is closed")

	// Data URI errors.
	ErrInvalidDataURI = errors.New("invalid data URI")
)
