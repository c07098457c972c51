package retriever

import (
	"regexp"
	"strings"
)

// unsupportedForms lists platforms and topics known to be outside the manual set.
var unsupportedForms = []string{
	"f-16", "f-15", "f-22", "f-35", "f-18", "a-10", "b-52", "b-1", "b-2",
	"747", "737", "777", "787", "a320", "a380", "c-130", "c-17", "c-5",
	"mig", "su-", "su 57", "felon", "tu-", "nuclear", "submarine", "ship",
	"m1 abrams", "bradley", "stryker", "humvee",
}

type guardPattern struct {
	form    string
	pattern *regexp.Regexp
}

// PlatformGuard rejects questions about platforms the manuals do not cover.
type PlatformGuard struct {
	patterns []guardPattern
}

// NewPlatformGuard builds a guard over the built-in list of unsupported forms.
func NewPlatformGuard() *PlatformGuard {
	return NewPlatformGuardWithForms(unsupportedForms)
}

// NewPlatformGuardWithForms builds a guard over forms, checked in order.
// A form matches as a whole word, so "mig" does not fire on "migrate". Forms
// ending in a separator ("su-") match any continuation.
func NewPlatformGuardWithForms(forms []string) *PlatformGuard {
	g := &PlatformGuard{patterns: make([]guardPattern, 0, len(forms))}
	for _, f := range forms {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		expr := `(?:^|[^a-z0-9])` + regexp.QuoteMeta(f)
		if last := f[len(f)-1]; isAlnum(last) {
			expr += `(?:$|[^a-z0-9])`
		}
		g.patterns = append(g.patterns, guardPattern{
			form:    f,
			pattern: regexp.MustCompile(expr),
		})
	}
	return g
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// Check returns the first unsupported form mentioned in query.
func (g *PlatformGuard) Check(query string) (string, bool) {
	lower := strings.ToLower(query)
	for _, p := range g.patterns {
		if p.pattern.MatchString(lower) {
			return p.form, true
		}
	}
	return "", false
}
