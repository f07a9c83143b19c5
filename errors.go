package blogpodcast

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrConfiguration    = errors.New("blog configuration error")
	ErrUnknownBlogTag   = errors.New("unknown blog tag")
	ErrInvalidMatcher   = errors.New("invalid matcher")
	ErrDateResolution   = errors.New("unresolvable document date")
	ErrDocumentNotFound = errors.New("document not found in blog")
)

// ConfigurationError reports a missing or malformed BlogConfig.
type ConfigurationError struct {
	Tag    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Tag == "" {
		return "blogpodcast: " + e.Reason
	}
	return fmt.Sprintf("blogpodcast: blog %q: %s", e.Tag, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// UnknownBlogTagError is returned when a tag was never registered.
type UnknownBlogTagError struct {
	Tag string
}

func (e *UnknownBlogTagError) Error() string {
	return fmt.Sprintf("blogpodcast: no blog configuration found for blogtag %q", e.Tag)
}

func (e *UnknownBlogTagError) Is(target error) bool { return target == ErrUnknownBlogTag }

// InvalidMatcherError reports a matcher field holding a value of the wrong
// shape, or a pattern that does not compile.
type InvalidMatcherError struct {
	Tag   string
	Field string
	Value any
	Err   error
}

func (e *InvalidMatcherError) Error() string {
	msg := fmt.Sprintf("blogpodcast: blog %q: incorrect setting for matchers.%s (%T %v)", e.Tag, e.Field, e.Value, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidMatcherError) Is(target error) bool { return target == ErrInvalidMatcher }

func (e *InvalidMatcherError) Unwrap() error { return e.Err }

// DateProblem describes one document whose timestamp could not be resolved.
type DateProblem struct {
	VPath string
	Value string
	Err   error
}

// DateResolutionError carries every document of a batch that lacks a
// usable timestamp, not only the first one found.
type DateResolutionError struct {
	Problems []DateProblem
}

func (e *DateResolutionError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Value == "" {
			parts = append(parts, p.VPath+": no publication date or modification time")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: bad date %q", p.VPath, p.Value))
	}
	return fmt.Sprintf("blogpodcast: %d document(s) with unresolvable dates: %s", len(e.Problems), strings.Join(parts, "; "))
}

func (e *DateResolutionError) Is(target error) bool { return target == ErrDateResolution }

// VPaths lists the offending documents in the order they were seen.
func (e *DateResolutionError) VPaths() []string {
	out := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		out[i] = p.VPath
	}
	return out
}

// DocumentNotFoundError means a page claims a blog tag whose own query does
// not return that page.
type DocumentNotFoundError struct {
	Tag  string
	Path string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("blogpodcast: did not find document %s in blog %q", e.Path, e.Tag)
}

func (e *DocumentNotFoundError) Is(target error) bool { return target == ErrDocumentNotFound }
