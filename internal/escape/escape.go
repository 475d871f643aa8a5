// Package escape holds the text-escaping helpers shared by every formatter
// of a given output format.
//
// Formatters must route all untrusted text (crawled URLs, parameter names
// and values, response headers) through the escaper of their format.
// Having a single implementation per format keeps sanitization in one
// reviewed place instead of scattered across plugin formatters.
package escape

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/nao1215/scanreport/internal/format"
)

// Func escapes untrusted text for embedding in a document.
type Func func(string) string

// HTML escapes s for use in HTML text content and in quoted attribute
// values. It escapes <, >, &, ' and ".
func HTML(s string) string {
	return html.EscapeString(s)
}

// markdownSpecial lists the ASCII punctuation that CommonMark allows to be
// backslash-escaped. Escaping all of it is always safe.
const markdownSpecial = "\\`*_{}[]()<>#+-.!|~\"'&:;=?@$%^,/"

// Markdown escapes s for use as inline Markdown text. Line breaks are
// folded to spaces so untrusted input cannot start a new block.
func Markdown(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + len(s)/4)
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			sb.WriteByte(' ')
		case r < 0x80 && strings.ContainsRune(markdownSpecial, r):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case unicode.IsControl(r):
			sb.WriteRune(unicode.ReplacementChar)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// markdownURLReplacer percent-encodes characters that would end or break a
// Markdown link destination. "|" would end a GFM table cell mid-link.
var markdownURLReplacer = strings.NewReplacer(
	" ", "%20",
	"|", "%7C",
	"(", "%28",
	")", "%29",
	"<", "%3C",
	">", "%3E",
	"\\", "%5C",
	"\n", "%0A",
	"\r", "%0D",
	"\t", "%09",
)

// MarkdownURL escapes s for use as a Markdown link destination.
func MarkdownURL(s string) string {
	return markdownURLReplacer.Replace(s)
}

// Text neutralizes s for plain-text output. Control characters, including
// terminal escape sequences, are replaced so untrusted input cannot
// rewrite the reader's terminal; line breaks and tabs become spaces.
func Text(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return unicode.ReplacementChar
		default:
			return r
		}
	}, s)
}

// Identity returns s unchanged. Structured formats (JSON, YAML) escape
// during encoding, so their formatters never splice raw text.
func Identity(s string) string {
	return s
}

// For returns the escaper for f.
func For(f format.Format) Func {
	switch f {
	case format.HTML:
		return HTML
	case format.Markdown:
		return Markdown
	case format.Text:
		return Text
	default:
		return Identity
	}
}
