package blogpodcast

import (
	"net/url"
	"path"
	"strings"
)

// parseRootURL validates the site root URL feeds and items are built on.
func parseRootURL(rootURL string) (*url.URL, error) {
	u, err := url.Parse(rootURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &ConfigurationError{Reason: "invalid root URL " + rootURL}
	}
	return u, nil
}

// joinURL resolves a site-relative path against base, keeping any path
// prefix base carries and collapsing duplicate slashes.
func joinURL(base *url.URL, rel string) string {
	u := *base
	u.Path = path.Join("/", base.Path, strings.ReplaceAll(rel, "\\", "/"))
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// FeedURL returns the absolute URL of a feed published at rssurl.
func FeedURL(rootURL, rssurl string) (string, error) {
	base, err := parseRootURL(rootURL)
	if err != nil {
		return "", err
	}
	return joinURL(base, rssurl), nil
}

// DocumentURL returns the absolute URL of a rendered document.
func DocumentURL(rootURL string, d Document) (string, error) {
	base, err := parseRootURL(rootURL)
	if err != nil {
		return "", err
	}
	return joinURL(base, d.RenderPath), nil
}
