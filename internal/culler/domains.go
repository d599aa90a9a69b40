package culler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// DomainMatcher matches URL hosts against exclude patterns. A plain domain
// covers itself and its subdomains; patterns with glob syntax
// ("*.corp.example", "git{hub,lab}.com") match label by label.
type DomainMatcher struct {
	globs []glob.Glob
}

// NewDomainMatcher compiles patterns. Blank patterns are ignored.
func NewDomainMatcher(patterns []string) (*DomainMatcher, error) {
	m := &DomainMatcher{}
	for _, raw := range patterns {
		p := strings.ToLower(strings.TrimSpace(raw))
		if p == "" {
			continue
		}
		if !strings.ContainsAny(p, "*?[{") {
			p = fmt.Sprintf("{%s,**.%s}", p, p)
		}
		g, err := glob.Compile(p, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", raw, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether the host of rawURL matches a pattern.
func (m *DomainMatcher) Match(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, g := range m.globs {
		if g.Match(host) {
			return true
		}
	}
	return false
}
