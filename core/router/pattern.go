package router

import (
	"fmt"
	"regexp"
	"strings"
)

// pathPattern is a compiled route pattern. Parameters are written as a whole
// ":name" segment, or as "{name}" / "{name:regexp}" anywhere inside a segment.
// Every parameter must capture a non-empty value that contains no '/'.
type pathPattern struct {
	raw   string
	re    *regexp.Regexp
	names []string
	index []int
}

func compilePattern(pattern string) (*pathPattern, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, fmt.Errorf("%w: %q must begin with '/'", ErrInvalidPattern, pattern)
	}

	var (
		expr  strings.Builder
		names []string
		seen  = make(map[string]struct{})
	)
	expr.WriteByte('^')

	for _, seg := range strings.Split(pattern[1:], "/") {
		expr.WriteByte('/')
		segNames, err := compileSegment(&expr, seg)
		if err != nil {
			return nil, fmt.Errorf("%w in %q", err, pattern)
		}
		for _, name := range segNames {
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateParam, name, pattern)
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	expr.WriteByte('$')

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
	}

	p := &pathPattern{raw: pattern, re: re, names: names, index: make([]int, len(names))}
	for i, name := range names {
		p.index[i] = re.SubexpIndex(name)
	}
	return p, nil
}

// compileSegment appends the regexp for one path segment and returns the
// parameter names it declares.
func compileSegment(expr *strings.Builder, seg string) ([]string, error) {
	if strings.HasPrefix(seg, ":") {
		name := seg[1:]
		if !validParamName(name) {
			return nil, fmt.Errorf("%w: bad parameter name %q", ErrInvalidPattern, name)
		}
		fmt.Fprintf(expr, "(?P<%s>[^/]+)", name)
		return []string{name}, nil
	}

	var names []string
	for len(seg) > 0 {
		open := strings.IndexByte(seg, '{')
		if open < 0 {
			if strings.IndexByte(seg, '}') >= 0 {
				return nil, fmt.Errorf("%w: unmatched '}'", ErrInvalidPattern)
			}
			expr.WriteString(regexp.QuoteMeta(seg))
			break
		}
		expr.WriteString(regexp.QuoteMeta(seg[:open]))

		// regexp bodies may contain their own braces, e.g. {id:[0-9]{3}}
		depth, end := 0, -1
		for j := open; j < len(seg); j++ {
			switch seg[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				end = j
				break
			}
		}
		if end < 0 {
			return nil, fmt.Errorf("%w: unclosed '{'", ErrInvalidPattern)
		}

		name, rexpr, hasExpr := strings.Cut(seg[open+1:end], ":")
		if !validParamName(name) {
			return nil, fmt.Errorf("%w: bad parameter name %q", ErrInvalidPattern, name)
		}
		if !hasExpr || rexpr == "" {
			rexpr = "[^/]+"
		}
		if _, err := regexp.Compile(rexpr); err != nil {
			return nil, fmt.Errorf("%w: parameter %q: %w", ErrInvalidPattern, name, err)
		}
		fmt.Fprintf(expr, "(?P<%s>(?:%s))", name, rexpr)
		names = append(names, name)

		seg = seg[end+1:]
	}
	return names, nil
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// match reports whether path matches the whole pattern and returns the
// captured values in parameter order.
func (p *pathPattern) match(path string) ([]string, bool) {
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	values := make([]string, len(p.names))
	for i, idx := range p.index {
		v := m[idx]
		if v == "" || strings.IndexByte(v, '/') >= 0 {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}
