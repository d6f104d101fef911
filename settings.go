package html2uri

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Fallback values applied by Normalize.
const (
	DefaultWidth      = 64
	DefaultHeight     = 64
	DefaultFontFamily = "sans-serif"
	DefaultFontSize   = 48.0
	DefaultFontWeight = "inherit"
	DefaultFontColor  = "inherit"
)

// MaxDimension caps surface width and height.
// Browsers refuse to allocate canvases beyond this size.
const MaxDimension = 16384

// hostFontSize is the font size used when a host delivers no settings at all.
const hostFontSize = 64.0

// Settings describes how content is rendered.
// Zero values mean "use the fallback" for every field except IsDocument,
// which selects the composition mode and has no fallback.
type Settings struct {
	Width      int     `json:"width,omitempty"`      // pixels, 0 = DefaultWidth
	Height     int     `json:"height,omitempty"`     // pixels, 0 = DefaultHeight
	IsDocument bool    `json:"isDocument"`           // content is a JSON-encoded document
	FontFamily string  `json:"fontFamily,omitempty"` // non-document mode only
	FontSize   float64 `json:"fontSize,omitempty"`   // pixels, non-document mode only
	FontWeight string  `json:"fontWeight,omitempty"` // non-document mode only
	FontColor  string  `json:"fontColor,omitempty"`  // non-document mode only
	CSS        string  `json:"css,omitempty"`        // extra stylesheet placed before the container
}

// DefaultSettings returns the settings used when the render trigger
// supplies none: a 64x64 surface in non-document mode.
func DefaultSettings() Settings {
	return Settings{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		FontSize:   hostFontSize,
		IsDocument: false,
	}
}

// Validate checks that settings are usable.
// Zero dimensions are valid (they fall back to 64); negative ones are not.
func (s Settings) Validate() error {
	if s.Width < 0 {
		return fmt.Errorf("%w: width %d must not be negative", ErrConfig, s.Width)
	}
	if s.Height < 0 {
		return fmt.Errorf("%w: height %d must not be negative", ErrConfig, s.Height)
	}
	if s.Width > MaxDimension || s.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds maximum of %d", ErrConfig, s.Width, s.Height, MaxDimension)
	}
	if math.IsNaN(s.FontSize) || math.IsInf(s.FontSize, 0) {
		return fmt.Errorf("%w: font size must be finite", ErrConfig)
	}
	if s.FontSize < 0 {
		return fmt.Errorf("%w: font size %g must not be negative", ErrConfig, s.FontSize)
	}
	return nil
}

// Normalize validates s and returns a copy with every fallback applied.
func (s Settings) Normalize() (Settings, error) {
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	if s.FontFamily == "" {
		s.FontFamily = DefaultFontFamily
	}
	if s.FontSize == 0 {
		s.FontSize = DefaultFontSize
	}
	if s.FontWeight == "" {
		s.FontWeight = DefaultFontWeight
	}
	if s.FontColor == "" {
		s.FontColor = DefaultFontColor
	}
	return s, nil
}

// rawSettings mirrors Settings with pointer and float fields so that
// ParseSettings can tell absent values from zero values.
type rawSettings struct {
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	IsDocument *bool    `json:"isDocument"`
	FontFamily string   `json:"fontFamily"`
	FontSize   *float64 `json:"fontSize"`
	FontWeight string   `json:"fontWeight"`
	FontColor  string   `json:"fontColor"`
	CSS        string   `json:"css"`
}

// ParseSettings decodes a JSON settings payload.
// The isDocument field is required; dimensions must be non-negative integers.
func ParseSettings(data []byte) (Settings, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Settings{}, fmt.Errorf("%w: empty settings payload", ErrConfig)
	}

	var raw rawSettings
	if err := json.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if raw.IsDocument == nil {
		return Settings{}, fmt.Errorf("%w: isDocument is required", ErrConfig)
	}

	width, err := parseDimension("width", raw.Width)
	if err != nil {
		return Settings{}, err
	}
	height, err := parseDimension("height", raw.Height)
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		Width:      width,
		Height:     height,
		IsDocument: *raw.IsDocument,
		FontFamily: raw.FontFamily,
		FontWeight: raw.FontWeight,
		FontColor:  raw.FontColor,
		CSS:        raw.CSS,
	}
	if raw.FontSize != nil {
		s.FontSize = *raw.FontSize
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// parseDimension converts an optional JSON number to a pixel count.
// Absent values map to 0, which Normalize turns into the fallback.
func parseDimension(name string, v *float64) (int, error) {
	if v == nil {
		return 0, nil
	}
	f := *v
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s must be finite", ErrConfig, name)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: %s %g must not be negative", ErrConfig, name, f)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %s %g must be a whole number of pixels", ErrConfig, name, f)
	}
	if f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s %g is too large", ErrConfig, name, f)
	}
	return int(f), nil
}
