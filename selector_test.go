package blogpodcast

import (
	"errors"
	"regexp"
	"testing"
)

func TestNewSelectorMatching(t *testing.T) {
	in := Document{VPath: "news/2024/a.md", RenderPath: "news/2024/a.html", Metadata: DocMetadata{BlogTag: "news", Layout: "blog.njk"}}
	outOfRoot := Document{VPath: "news/2023/b.md", RenderPath: "news/2023/b.html", Metadata: DocMetadata{BlogTag: "news", Layout: "blog.njk"}}
	wrongPath := Document{VPath: "other/2024/c.md", RenderPath: "news/2024/c.html", Metadata: DocMetadata{BlogTag: "news", Layout: "blog.njk"}}
	wrongTag := Document{VPath: "news/2024/d.md", RenderPath: "news/2024/d.html", Metadata: DocMetadata{BlogTag: "howto", Layout: "blog.njk"}}
	wrongLayout := Document{VPath: "news/2024/e.md", RenderPath: "news/2024/e.html", Metadata: DocMetadata{BlogTag: "news", Layout: "page.njk"}}
	notHTML := Document{VPath: "news/2024/f.md", RenderPath: "news/2024/f.json", Metadata: DocMetadata{BlogTag: "news", Layout: "blog.njk"}}

	cfg := BlogConfig{Matchers: &Matchers{
		Path:     "^news/",
		Layouts:  "blog.njk",
		RootPath: "/news/2024",
	}}
	sel, _, err := NewSelector(cfg, "news", Overrides{})
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}

	tests := []struct {
		name string
		doc  Document
		want bool
	}{
		{"matching", in, true},
		{"outside root path", outOfRoot, false},
		{"path mismatch", wrongPath, false},
		{"other blogtag", wrongTag, false},
		{"other layout", wrongLayout, false},
		{"not html", notHTML, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sel.Match(tt.doc); got != tt.want {
				t.Errorf("Match(%s) = %v, want %v", tt.doc.VPath, got, tt.want)
			}
		})
	}
}

func TestSelectorBlogRootPath(t *testing.T) {
	in := Document{VPath: "news/2024/a.md", RenderPath: "news/2024/a.html"}
	old := Document{VPath: "news/2023/b.md", RenderPath: "news/2023/b.html"}

	tests := []struct {
		name    string
		cfg     BlogConfig
		in, out Document
	}{
		{
			name: "blog root path and path pattern",
			cfg:  BlogConfig{RootPath: "news/2024", Matchers: &Matchers{Path: "^news/"}},
			in:   in,
			out:  old,
		},
		{
			name: "matchers root path wins",
			cfg:  BlogConfig{RootPath: "news/2024", Matchers: &Matchers{Path: "^news/", RootPath: "news/2023"}},
			in:   old,
			out:  in,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, _, err := NewSelector(tt.cfg, "", Overrides{})
			if err != nil {
				t.Fatalf("NewSelector failed: %v", err)
			}
			if !sel.Match(tt.in) {
				t.Errorf("Match(%s) = false, want true", tt.in.VPath)
			}
			if sel.Match(tt.out) {
				t.Errorf("Match(%s) = true, want false", tt.out.VPath)
			}
		})
	}
}

func TestSelectorOrderingFields(t *testing.T) {
	sel, _, err := NewSelector(BlogConfig{MaxEntries: 5, StartAt: 2, Matchers: &Matchers{}}, "news", Overrides{})
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	if sel.SortBy != SortByPublicationTime || !sel.Descending {
		t.Errorf("sort = %q descending=%v, want %q descending", sel.SortBy, sel.Descending, SortByPublicationTime)
	}
	if sel.Limit != 5 || sel.Offset != 2 {
		t.Errorf("limit/offset = %d/%d, want 5/2", sel.Limit, sel.Offset)
	}
	if !sel.RendersToHTML {
		t.Errorf("rendersToHTML should default to true")
	}

	u := sel.Unbounded()
	if u.Limit != 0 || u.Offset != 0 {
		t.Errorf("Unbounded() kept limit/offset %d/%d", u.Limit, u.Offset)
	}
	if sel.Limit != 5 {
		t.Errorf("Unbounded() modified the receiver")
	}
}

func TestSelectorNonPositiveLimits(t *testing.T) {
	sel, _, err := NewSelector(BlogConfig{MaxEntries: -1, StartAt: -3, Matchers: &Matchers{}}, "news", Overrides{})
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	if sel.Limit != 0 || sel.Offset != 0 {
		t.Errorf("limit/offset = %d/%d, want 0/0", sel.Limit, sel.Offset)
	}
}

func TestSelectorBlogTagsAllowList(t *testing.T) {
	sel, _, err := NewSelector(BlogConfig{Matchers: &Matchers{BlogTags: []string{"howto", "news"}}}, "news", Overrides{})
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	if got := sel.TagSet(); len(got) != 2 || got[0] != "news" || got[1] != "howto" {
		t.Errorf("TagSet() = %v, want [news howto]", got)
	}
	for tag, want := range map[string]bool{"news": true, "howto": true, "podcast": false, "": false} {
		d := Document{VPath: "x.md", RenderPath: "x.html", Metadata: DocMetadata{BlogTag: tag}}
		if got := sel.Match(d); got != want {
			t.Errorf("Match(blogtag %q) = %v, want %v", tag, got, want)
		}
	}
}

func TestSelectorWithoutTag(t *testing.T) {
	sel, _, err := NewSelector(BlogConfig{Matchers: &Matchers{Path: "^news/"}}, "", Overrides{})
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	if sel.HasTagFilter() {
		t.Fatalf("selector without tag must not filter on blogtag")
	}
	d := Document{VPath: "news/a.md", RenderPath: "news/a.html"}
	if !sel.Match(d) {
		t.Errorf("expected untagged document to match")
	}
}

func TestSelectorRendersToHTMLDisabled(t *testing.T) {
	off := false
	sel, _, err := NewSelector(BlogConfig{Matchers: &Matchers{RendersToHTML: &off}}, "", Overrides{})
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	if !sel.Match(Document{VPath: "feed.json.md", RenderPath: "feed.json"}) {
		t.Errorf("expected non-html document to match when rendersToHTML is false")
	}
}

func TestSelectorGlob(t *testing.T) {
	sel, _, err := NewSelector(BlogConfig{Matchers: &Matchers{Glob: "news/*.md"}}, "", Overrides{})
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	if !sel.Match(Document{VPath: "news/a.md", RenderPath: "news/a.html"}) {
		t.Errorf("news/a.md should match news/*.md")
	}
	if sel.Match(Document{VPath: "news/2024/a.md", RenderPath: "news/2024/a.html"}) {
		t.Errorf("news/2024/a.md should not match news/*.md")
	}

	_, _, err = NewSelector(BlogConfig{Matchers: &Matchers{Glob: "news/[.md"}}, "", Overrides{})
	if !errors.Is(err, ErrInvalidMatcher) {
		t.Errorf("expected invalid matcher error for malformed glob, got %v", err)
	}
}

func TestCompileMatcher(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		path    string
		want    bool
		wantErr bool
	}{
		{"nil is any", nil, "whatever", true, false},
		{"empty string is any", "", "whatever", true, false},
		{"string pattern", `^news/\d+`, "news/2024/a.md", true, false},
		{"string pattern miss", `^news/\d+`, "news/a.md", false, false},
		{"compiled pattern", regexp.MustCompile(`\.md$`), "a.md", true, false},
		{"exact", ExactPath("news/a.md"), "news/a.md", true, false},
		{"exact miss", ExactPath("news/a.md"), "news/a.md.bak", false, false},
		{"bad pattern", "news/(", "", false, true},
		{"wrong type", 12, "", false, true},
		{"wrong type list", []string{"news"}, "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := compileMatcher("news", "path", tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMatcher) {
					t.Fatalf("expected invalid matcher error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := m.Match(tt.path); got != tt.want {
				t.Errorf("%s.Match(%q) = %v, want %v", m, tt.path, got, tt.want)
			}
		})
	}
}

func TestNormalizeLayouts(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    []string
		wantErr bool
	}{
		{"nil", nil, nil, false},
		{"single", "blog.njk", []string{"blog.njk"}, false},
		{"list", []string{"a.njk", "b.njk"}, []string{"a.njk", "b.njk"}, false},
		{"yaml list", []any{"a.njk", "b.njk"}, []string{"a.njk", "b.njk"}, false},
		{"yaml list with number", []any{"a.njk", 3}, nil, true},
		{"number", 3, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeLayouts("news", tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMatcher) {
					t.Fatalf("expected invalid matcher error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("normalizeLayouts() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("layout[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewSelectorOverridesDoNotMutate(t *testing.T) {
	cfg := BlogConfig{MaxEntries: 10, Matchers: &Matchers{Path: "^news/"}}

	sel, merged, err := NewSelector(cfg, "news", Overrides{MaxEntries: intPtr(3), RootPath: "news/2024"})
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	if sel.Limit != 3 || merged.MaxEntries != 3 {
		t.Errorf("override not applied: limit=%d merged=%d", sel.Limit, merged.MaxEntries)
	}
	if sel.RootPath != "news/2024" || merged.Matchers.RootPath != "news/2024" {
		t.Errorf("root path override not applied: %q / %q", sel.RootPath, merged.Matchers.RootPath)
	}
	if cfg.MaxEntries != 10 || cfg.Matchers.RootPath != "" {
		t.Errorf("input configuration mutated: %+v %+v", cfg, *cfg.Matchers)
	}
}

func TestNewSelectorMissingMatchers(t *testing.T) {
	_, _, err := NewSelector(BlogConfig{}, "news", Overrides{})
	var ce *ConfigurationError
	if !errors.As(err, &ce) || ce.Tag != "news" {
		t.Fatalf("expected ConfigurationError for news, got %v", err)
	}
}

func TestPluginSelectorRootPathOverride(t *testing.T) {
	p := newTestPlugin(t)
	sel, _, err := p.Selector("news", Overrides{RootPath: "/news/archive"})
	if err != nil {
		t.Fatalf("Selector failed: %v", err)
	}
	if sel.RootPath != "news/archive" {
		t.Errorf("RootPath = %q, want %q", sel.RootPath, "news/archive")
	}

	again, _, _ := p.Selector("news", Overrides{})
	if again.RootPath != "" {
		t.Errorf("override leaked into registered blog: %q", again.RootPath)
	}
}
