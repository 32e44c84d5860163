package blocks

import (
	"encoding/json"
	"strings"
)

// Parser state is a token scan over HTML comment delimiters:
//
//	<!-- wp:namespace/name {"attr":1} -->  ...  <!-- /wp:namespace/name -->
//	<!-- wp:namespace/name {"attr":1} /-->
//
// Names without a namespace imply "core/". Text between delimiters belongs to
// the enclosing block and is not modeled. Parsing is total: any input string,
// including malformed attribute JSON and unbalanced closers, produces a
// well-formed (possibly empty) tree and never an error.

// delimiter is one recognized block comment.
type delimiter struct {
	name        string
	attrs       map[string]any
	closer      bool // <!-- /wp:name -->
	selfClosing bool // <!-- wp:name /-->
}

// Parse converts serialized block content into a block tree.
func Parse(raw string) []Node {
	var roots []Node
	// Stack of open containers; stack[i] owns stack[i+1].
	var stack []Node

	appendNode := func(n Node) {
		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			top.Children = append(top.Children, n)
			return
		}
		roots = append(roots, n)
	}

	for rest := raw; ; {
		d, after, ok := nextDelimiter(rest)
		if !ok {
			break
		}
		rest = after

		switch {
		case d.closer:
			// Pop the nearest matching open block. A closer with no matching
			// opener is ignored; intervening unclosed blocks are closed as-is.
			idx := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].Kind == d.name {
					idx = i
					break
				}
			}
			if idx < 0 {
				continue
			}
			for len(stack) > idx {
				n := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if len(stack) > 0 {
					top := &stack[len(stack)-1]
					top.Children = append(top.Children, n)
				} else {
					roots = append(roots, n)
				}
			}
		case d.selfClosing:
			appendNode(Node{Kind: d.name, Attrs: d.attrs})
		default:
			stack = append(stack, Node{Kind: d.name, Attrs: d.attrs})
		}
	}

	// Close anything left open at end of input.
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			top.Children = append(top.Children, n)
		} else {
			roots = append(roots, n)
		}
	}

	return roots
}

// ContainsAny reports whether raw textually contains an opening delimiter for
// at least one of the given block names. This is the cheap containment check
// used before parsing; it never inspects nesting.
func ContainsAny(raw string, names ...string) bool {
	for rest := raw; ; {
		d, after, ok := nextDelimiter(rest)
		if !ok {
			return false
		}
		rest = after
		if d.closer {
			continue
		}
		for _, name := range names {
			if d.name == normalizeName(name) {
				return true
			}
		}
	}
}

// nextDelimiter scans for the next block comment in s. Returns the parsed
// delimiter and the remainder of s after it.
func nextDelimiter(s string) (delimiter, string, bool) {
	for {
		start := strings.Index(s, "<!--")
		if start < 0 {
			return delimiter{}, "", false
		}
		end := strings.Index(s[start+4:], "-->")
		if end < 0 {
			return delimiter{}, "", false
		}
		body := strings.TrimSpace(s[start+4 : start+4+end])
		s = s[start+4+end+3:]

		d, ok := parseDelimiterBody(body)
		if !ok {
			// Ordinary HTML comment, keep scanning.
			continue
		}
		return d, s, true
	}
}

func parseDelimiterBody(body string) (delimiter, bool) {
	var d delimiter
	switch {
	case strings.HasPrefix(body, "/wp:"):
		d.closer = true
		body = body[len("/wp:"):]
	case strings.HasPrefix(body, "wp:"):
		body = body[len("wp:"):]
	default:
		return delimiter{}, false
	}

	// Name runs to the first whitespace; the rest is the attribute payload.
	name := body
	payload := ""
	if i := strings.IndexAny(body, " \t\n\r"); i >= 0 {
		name = body[:i]
		payload = strings.TrimSpace(body[i+1:])
	}
	if name == "" {
		return delimiter{}, false
	}
	d.name = normalizeName(name)

	if strings.HasSuffix(payload, "/") {
		d.selfClosing = true
		payload = strings.TrimSpace(strings.TrimSuffix(payload, "/"))
	} else if strings.HasSuffix(name, "/") && payload == "" {
		// <!-- wp:name/ --> without attributes.
		d.selfClosing = true
		d.name = normalizeName(strings.TrimSuffix(name, "/"))
	}

	d.attrs = parseAttrs(payload)
	return d, true
}

// parseAttrs decodes the JSON attribute payload. Malformed or absent payloads
// yield an empty map rather than an error.
func parseAttrs(payload string) map[string]any {
	attrs := map[string]any{}
	if payload == "" || !strings.HasPrefix(payload, "{") {
		return attrs
	}
	if err := json.Unmarshal([]byte(payload), &attrs); err != nil {
		return map[string]any{}
	}
	return attrs
}

// normalizeName expands bare block names into the core namespace.
func normalizeName(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	return "core/" + name
}
