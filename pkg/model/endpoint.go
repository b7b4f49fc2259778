package model

import (
	"fmt"
	"strings"
)

// MaxEndpointSegments is the maximum number of segments in an endpoint.
const MaxEndpointSegments = 64

// segment is one "/"-delimited element of an endpoint pattern.
type segment struct {
	// text is the literal value, or the parameter name for parameters.
	text    string
	isParam bool
}

func (s segment) String() string {
	if s.isParam {
		return "%{" + s.text + "}"
	}
	return s.text
}

// endpointPattern is a parsed endpoint such as /%{sensor_id}/value.
type endpointPattern struct {
	raw      string
	segments []segment
}

// parseEndpoint parses and checks an endpoint pattern.
func parseEndpoint(raw string) (endpointPattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return endpointPattern{}, fmt.Errorf("%w: %q must start with /", ErrInvalidEndpoint, raw)
	}
	parts := strings.Split(raw[1:], "/")
	if len(parts) > MaxEndpointSegments {
		return endpointPattern{}, fmt.Errorf("%w: %q has more than %d segments", ErrInvalidEndpoint, raw, MaxEndpointSegments)
	}

	p := endpointPattern{raw: raw, segments: make([]segment, 0, len(parts))}
	for _, part := range parts {
		seg := segment{text: part}
		if strings.HasPrefix(part, "%{") && strings.HasSuffix(part, "}") {
			seg = segment{text: part[2 : len(part)-1], isParam: true}
		}
		if !isIdentifier(seg.text) {
			return endpointPattern{}, fmt.Errorf("%w: %q has invalid segment %q", ErrInvalidEndpoint, raw, part)
		}
		p.segments = append(p.segments, seg)
	}
	return p, nil
}

// isIdentifier reports whether s matches [A-Za-z_][A-Za-z0-9_]*.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// normalized returns the pattern with parameter names erased, so that
// /%{a}/value and /%{b}/value compare equal.
func (p endpointPattern) normalized() string {
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		if s.isParam {
			b.WriteString("%{}")
		} else {
			b.WriteString(s.text)
		}
	}
	return b.String()
}

// match reports whether the split concrete path matches the pattern.
func (p endpointPattern) match(parts []string) bool {
	if len(parts) != len(p.segments) {
		return false
	}
	for i, s := range p.segments {
		if !s.isParam && s.text != parts[i] {
			return false
		}
	}
	return true
}

// matchPrefix reports whether parts matches the first len(parts) segments.
func (p endpointPattern) matchPrefix(parts []string) bool {
	if len(parts) >= len(p.segments) {
		return false
	}
	for i, part := range parts {
		s := p.segments[i]
		if !s.isParam && s.text != part {
			return false
		}
	}
	return true
}

// suffix joins the segments after the first n.
func (p endpointPattern) suffix(n int) string {
	names := make([]string, 0, len(p.segments)-n)
	for _, s := range p.segments[n:] {
		names = append(names, s.String())
	}
	return strings.Join(names, "/")
}

// parent returns the pattern without its last segment.
func (p endpointPattern) parent() string {
	var b strings.Builder
	for _, s := range p.segments[:len(p.segments)-1] {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	return b.String()
}

// splitPath splits a concrete path into its segments. It returns false for
// paths that do not start with "/" or contain empty segments.
func splitPath(path string) ([]string, bool) {
	if !strings.HasPrefix(path, "/") || len(path) == 1 {
		return nil, false
	}
	parts := strings.Split(path[1:], "/")
	for _, part := range parts {
		if part == "" {
			return nil, false
		}
	}
	return parts, true
}

// matcher resolves concrete paths to mapping indices. It is a segment trie
// built once at interface construction; lookup returns the lowest
// declaration index among all matching patterns, which is the first match.
type matcher struct {
	root *matchNode
}

type matchNode struct {
	literals map[string]*matchNode
	param    *matchNode

	// index of the mapping ending at this node, -1 if none.
	index int
}

func newMatchNode() *matchNode {
	return &matchNode{index: -1}
}

func newMatcher() *matcher {
	return &matcher{root: newMatchNode()}
}

// insert adds a pattern. Patterns with the same normalized form share a
// terminal node; the first inserted keeps it.
func (m *matcher) insert(p endpointPattern, index int) {
	n := m.root
	for _, s := range p.segments {
		if s.isParam {
			if n.param == nil {
				n.param = newMatchNode()
			}
			n = n.param
			continue
		}
		if n.literals == nil {
			n.literals = make(map[string]*matchNode)
		}
		child, ok := n.literals[s.text]
		if !ok {
			child = newMatchNode()
			n.literals[s.text] = child
		}
		n = child
	}
	if n.index < 0 {
		n.index = index
	}
}

// lookup returns the mapping index for parts, or -1.
func (m *matcher) lookup(parts []string) int {
	return m.root.find(parts)
}

func (n *matchNode) find(parts []string) int {
	if len(parts) == 0 {
		return n.index
	}
	best := -1
	if child, ok := n.literals[parts[0]]; ok {
		best = child.find(parts[1:])
	}
	if n.param != nil {
		if idx := n.param.find(parts[1:]); idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}
	return best
}
