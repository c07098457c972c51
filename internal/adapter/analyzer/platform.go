package analyzer

import (
	"regexp"

	"mantis/internal/domain"
)

// Known platform tags, in detection order.
const (
	PlatformAH1   domain.Platform = "AH-1"
	PlatformRC12  domain.Platform = "RC-12"
	PlatformRD12  domain.Platform = "RD-12"
	PlatformC12   domain.Platform = "C-12"
	PlatformUH1   domain.Platform = "UH-1"
	PlatformEH1   domain.Platform = "EH-1"
	PlatformOH58  domain.Platform = "OH-58"
	PlatformUH60  domain.Platform = "UH-60"
	PlatformCH47  domain.Platform = "CH-47"
	PlatformM1    domain.Platform = "M1"
	PlatformM2    domain.Platform = "M2"
	PlatformHMMWV domain.Platform = "HMMWV"
)

type platformPattern struct {
	tag     domain.Platform
	pattern *regexp.Regexp
}

// platformTable is evaluated top to bottom and the first match wins.
// C-12 carries a leading word boundary so that "RC-12" is never read as C-12;
// RC-12 and RD-12 are declared first regardless.
var platformTable = []platformPattern{
	{PlatformAH1, regexp.MustCompile(`(?i)AH[-_]?1`)},
	{PlatformRC12, regexp.MustCompile(`(?i)RC[-_]?12`)},
	{PlatformRD12, regexp.MustCompile(`(?i)RD[-_]?12`)},
	{PlatformC12, regexp.MustCompile(`(?i)\bC[-_]?12`)},
	{PlatformUH1, regexp.MustCompile(`(?i)UH[-_]?1`)},
	{PlatformEH1, regexp.MustCompile(`(?i)EH[-_]?1`)},
	{PlatformOH58, regexp.MustCompile(`(?i)OH[-_]?58`)},
	{PlatformUH60, regexp.MustCompile(`(?i)UH[-_]?60`)},
	{PlatformCH47, regexp.MustCompile(`(?i)CH[-_]?47`)},
	{PlatformM1, regexp.MustCompile(`(?i)\bM1\b`)},
	{PlatformM2, regexp.MustCompile(`(?i)\bM2\b`)},
	{PlatformHMMWV, regexp.MustCompile(`(?i)HMMWV|HUMVEE`)},
}

// DetectPlatform classifies a filename or query against the platform table.
func DetectPlatform(text string) domain.Platform {
	for _, p := range platformTable {
		if p.pattern.MatchString(text) {
			return p.tag
		}
	}
	return domain.PlatformUnknown
}

// Platforms returns every known tag in detection order.
func Platforms() []domain.Platform {
	out := make([]domain.Platform, len(platformTable))
	for i, p := range platformTable {
		out[i] = p.tag
	}
	return out
}

// IsKnownPlatform reports whether p is a tag from the table.
func IsKnownPlatform(p domain.Platform) bool {
	for _, entry := range platformTable {
		if entry.tag == p {
			return true
		}
	}
	return false
}
