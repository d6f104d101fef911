package html2uri

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"net/url"
	"strings"
	"unicode/utf8"
)

// PNGMediaType is the media type of every URI produced by the renderer.
const PNGMediaType = "image/png"

// encodeURIComponent percent-encodes s the way ECMAScript's
// encodeURIComponent does: everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	// QueryEscape targets form encoding; undo the differences.
	r := strings.NewReplacer(
		"+", "%20",
		"%21", "!",
		"%27", "'",
		"%28", "(",
		"%29", ")",
		"%2A", "*",
	)
	return r.Replace(escaped)
}

// decodeURIComponent reverses encodeURIComponent.
// Invalid escapes, and escapes that decode to invalid UTF-8, are reported
// as ErrDecode.
func decodeURIComponent(s string) (string, error) {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !utf8.ValidString(decoded) {
		return "", fmt.Errorf("%w: invalid UTF-8 in percent-encoding", ErrDecode)
	}
	return decoded, nil
}

// DecodeImageURI splits a base64 data URI into its media type and payload.
func DecodeImageURI(uri string) (mediaType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURI)
	}
	mediaType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: payload is not base64 encoded", ErrInvalidDataURI)
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return mediaType, data, nil
}

// verifyImageURI checks that uri holds a decodable PNG of the given size.
func verifyImageURI(uri string, width, height int) error {
	mediaType, data, err := DecodeImageURI(uri)
	if err != nil {
		return err
	}
	if mediaType != PNGMediaType {
		return fmt.Errorf("%w: unexpected media type %q", ErrInvalidDataURI, mediaType)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if cfg.Width != width || cfg.Height != height {
		return fmt.Errorf("%w: image is %dx%d, want %dx%d", ErrInvalidDataURI, cfg.Width, cfg.Height, width, height)
	}
	return nil
}
