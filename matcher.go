package blogpodcast

import (
	"fmt"
	"regexp"
)

type matcherKind int

const (
	matchAny matcherKind = iota
	matchExact
	matchPattern
)

// PathMatcher is a resolved path predicate: it accepts anything, one exact
// path, or whatever a compiled regular expression matches.
type PathMatcher struct {
	kind  matcherKind
	exact string
	re    *regexp.Regexp
}

// AnyPath accepts every path.
func AnyPath() PathMatcher { return PathMatcher{kind: matchAny} }

// ExactPath accepts only p.
func ExactPath(p string) PathMatcher { return PathMatcher{kind: matchExact, exact: p} }

// PatternPath accepts paths matched anywhere by re.
func PatternPath(re *regexp.Regexp) PathMatcher {
	if re == nil {
		return AnyPath()
	}
	return PathMatcher{kind: matchPattern, re: re}
}

// IsAny reports whether the matcher places no constraint.
func (m PathMatcher) IsAny() bool { return m.kind == matchAny }

// Match reports whether p satisfies the matcher.
func (m PathMatcher) Match(p string) bool {
	switch m.kind {
	case matchExact:
		return p == m.exact
	case matchPattern:
		return m.re.MatchString(p)
	default:
		return true
	}
}

func (m PathMatcher) String() string {
	switch m.kind {
	case matchExact:
		return "exact(" + m.exact + ")"
	case matchPattern:
		return "pattern(" + m.re.String() + ")"
	default:
		return "any"
	}
}

// compileMatcher resolves a raw path/renderpath setting once.
func compileMatcher(tag, field string, v any) (PathMatcher, error) {
	switch m := v.(type) {
	case nil:
		return AnyPath(), nil
	case PathMatcher:
		return m, nil
	case *regexp.Regexp:
		return PatternPath(m), nil
	case string:
		if m == "" {
			return AnyPath(), nil
		}
		re, err := regexp.Compile(m)
		if err != nil {
			return PathMatcher{}, &InvalidMatcherError{Tag: tag, Field: field, Value: v, Err: err}
		}
		return PatternPath(re), nil
	default:
		return PathMatcher{}, &InvalidMatcherError{Tag: tag, Field: field, Value: v}
	}
}

// normalizeLayouts accepts a single layout name or a list of them.
func normalizeLayouts(tag string, v any) ([]string, error) {
	switch l := v.(type) {
	case nil:
		return nil, nil
	case string:
		if l == "" {
			return nil, nil
		}
		return []string{l}, nil
	case []string:
		return append([]string(nil), l...), nil
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, &InvalidMatcherError{Tag: tag, Field: "layouts", Value: v,
					Err: fmt.Errorf("layout entry %v is %T, not a string", item, item)}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &InvalidMatcherError{Tag: tag, Field: "layouts", Value: v}
	}
}
