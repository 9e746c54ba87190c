package prp

import (
	"regexp"
	"strings"
)

// Extractor finds the first PRP reference in free text.
type Extractor struct {
	pattern *regexp.Regexp
}

// NewExtractor builds an extractor for references under dir, e.g. "PRPs".
// A reference is dir + "/" + one or more characters that are neither
// whitespace nor ')' + ".md".
func NewExtractor(dir string) *Extractor {
	dir = strings.TrimSuffix(strings.TrimSpace(dir), "/")
	if dir == "" {
		dir = DefaultDir
	}
	return &Extractor{
		pattern: regexp.MustCompile(regexp.QuoteMeta(dir) + `/[^\s)]+\.md`),
	}
}

// Extract returns the first reference in comment. The boolean is false when
// the comment mentions no PRP, which is not an error.
func (e *Extractor) Extract(comment string) (string, bool) {
	ref := e.pattern.FindString(comment)
	if ref == "" {
		return "", false
	}
	return ref, true
}
