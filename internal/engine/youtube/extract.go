package youtube

import (
	"fmt"
	"regexp"

	"github.com/anatolykoptev/go_ytcomments/internal/engine/tree"
)

// blobPattern locates a JSON object embedded in a script tag: a prefix that
// ends right before the opening brace, then a terminator anchored at the end
// of the object.
type blobPattern struct {
	name       string
	prefix     *regexp.Regexp
	terminator *regexp.Regexp
}

var (
	ytcfgPattern = blobPattern{
		name:       "ytcfg",
		prefix:     regexp.MustCompile(`ytcfg\.set\s*\(\s*`),
		terminator: regexp.MustCompile(`^\s*\)\s*;`),
	}
	initialDataPattern = blobPattern{
		name:       "ytInitialData",
		prefix:     regexp.MustCompile(`(?:window\s*\[\s*["']ytInitialData["']\s*\]|ytInitialData)\s*=\s*`),
		terminator: regexp.MustCompile(`^\s*;\s*(?:var\s+meta|</script|\n)`),
	}
)

// find returns the first object after a prefix match that is followed by
// the terminator. Calls like ytcfg.set("KEY", 1) are skipped.
func (p blobPattern) find(doc []byte) ([]byte, bool) {
	for _, loc := range p.prefix.FindAllIndex(doc, -1) {
		rest := doc[loc[1]:]
		obj := balancedObject(rest)
		if obj == nil {
			continue
		}
		if p.terminator.Match(rest[len(obj):]) {
			return obj, true
		}
	}
	return nil, false
}

// balancedObject returns the {...} prefix of b, honoring string literals
// and escapes, or nil if b does not start with a complete object.
func balancedObject(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inString := false
	var quote byte
	escaped := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString = true
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

func (p blobPattern) parse(doc []byte) (*tree.Value, error) {
	raw, ok := p.find(doc)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrExtraction, p.name)
	}
	v, err := tree.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtraction, p.name, err)
	}
	if v.Kind() != tree.KindMap {
		return nil, fmt.Errorf("%w: %s is not an object", ErrExtraction, p.name)
	}
	return v, nil
}

func extractRuntimeConfig(doc []byte) (*RuntimeConfig, error) {
	v, err := ytcfgPattern.parse(doc)
	if err != nil {
		return nil, err
	}
	return &RuntimeConfig{root: v}, nil
}

func extractInitialData(doc []byte) (*tree.Value, error) {
	return initialDataPattern.parse(doc)
}
