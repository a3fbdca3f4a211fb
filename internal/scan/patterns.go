package scan

import (
	"regexp"
	"strings"
	"time"
)

const dateLayout = "20060102"

// Patterns holds the compiled post conventions. A Patterns value is built once
// at startup and never mutated, so it can be shared freely.
type Patterns struct {
	postName *regexp.Regexp
	title    *regexp.Regexp
}

// NewPatterns compiles the post filename and title conventions.
func NewPatterns() *Patterns {
	return &Patterns{
		postName: regexp.MustCompile(`^((\d{8}).*)\.md$`),
		title:    regexp.MustCompile(`(?m)^#\s+(.*)$`),
	}
}

// MatchPost reports whether name follows the post convention. base is the name
// without its .md extension and date is the leading eight digits.
func (p *Patterns) MatchPost(name string) (base, date string, ok bool) {
	m := p.postName.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Title returns the text of the first "# " heading line.
func (p *Patterns) Title(content []byte) (string, bool) {
	m := p.title.FindSubmatch(content)
	if m == nil {
		return "", false
	}
	title := strings.TrimSuffix(string(m[1]), "\r")
	return title, title != ""
}

// ParseDate parses a YYYYMMDD string strictly, in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
