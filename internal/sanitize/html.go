package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes.
var StrictPolicy = bluemonday.StrictPolicy()

// maxDecodePasses bounds entity decoding of nested encodings like "&amp;lt;".
const maxDecodePasses = 3

// Text returns trimmed plain text with every HTML element removed. Input is
// entity-decoded before sanitizing, so encoded markup such as "&lt;script&gt;"
// is stripped like the literal tag. The policy's own escaping is decoded
// afterwards so "Q&A" and "Alice's" are stored as typed.
// Used for usernames and event titles, locations and descriptions.
func Text(input string) string {
	for range maxDecodePasses {
		decoded := html.UnescapeString(input)
		if decoded == input {
			break
		}
		input = decoded
	}
	return strings.TrimSpace(html.UnescapeString(StrictPolicy.Sanitize(input)))
}
