package html2uri

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
)

// Namespaces declared on the composed document.
const (
	svgNamespace   = "http://www.w3.org/2000/svg"
	xhtmlNamespace = "http://www.w3.org/1999/xhtml"
)

// VectorDocument is a composed SVG document wrapping content in a
// foreignObject region that covers the whole canvas.
type VectorDocument string

// String returns the document markup.
func (d VectorDocument) String() string {
	return string(d)
}

// DataURI encodes the document as an image/svg+xml data URI, suitable as
// the source of an image decode.
func (d VectorDocument) DataURI() string {
	return "data:image/svg+xml," + encodeURIComponent(string(d))
}

// Compose builds the vector document for content.
//
// In non-document mode content is wrapped verbatim in a container styled
// from the font settings. In document mode content must be a JSON-encoded
// string; its decoded value is wrapped in an unstyled container, and a
// malformed payload yields ErrDecode.
//
// Compose has no side effects: identical inputs give identical output.
func Compose(s Settings, content string) (VectorDocument, error) {
	s, err := s.Normalize()
	if err != nil {
		return "", err
	}

	var container string
	if s.IsDocument {
		decoded, err := decodeDocument(content)
		if err != nil {
			return "", err
		}
		container = "<div>" + decoded + "</div>"
	} else {
		container = `<div style="` + html.EscapeString(buildStyle(s)) + `">` + content + "</div>"
	}

	var b strings.Builder
	b.Grow(len(container) + 256)
	fmt.Fprintf(&b, `<svg xmlns="%s" width="%d" height="%d">`, svgNamespace, s.Width, s.Height)
	b.WriteString(`<foreignObject width="100%" height="100%">`)
	fmt.Fprintf(&b, `<div xmlns="%s">`, xhtmlNamespace)
	if s.CSS != "" {
		b.WriteString("<style>")
		b.WriteString(escapeStyleText(s.CSS))
		b.WriteString("</style>")
	}
	b.WriteString(container)
	b.WriteString("</div></foreignObject></svg>")

	return VectorDocument(b.String()), nil
}

// buildStyle synthesizes the inline style for non-document mode.
// s must be normalized. font-color is kept for hosts that read it back;
// color is what the rasterizer honors.
func buildStyle(s Settings) string {
	decls := []string{
		"font-family: " + s.FontFamily,
		"font-size: " + strconv.FormatFloat(s.FontSize, 'f', -1, 64) + "px",
		"font-weight: " + s.FontWeight,
		"font-color: " + s.FontColor,
		"color: " + s.FontColor,
		"align: center",
		"vertical-align: middle",
	}
	return strings.Join(decls, "; ")
}

// decodeDocument decodes a JSON-encoded markup string.
func decodeDocument(content string) (string, error) {
	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return "", fmt.Errorf("%w: content is not valid JSON: %v", ErrDecode, err)
	}
	markup, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: content must encode a JSON string, got %T", ErrDecode, v)
	}
	return markup, nil
}

// escapeStyleText keeps a stylesheet from closing its <style> element early.
// The foreignObject is parsed as XML, so markup characters are escaped too.
func escapeStyleText(css string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(css)
}
