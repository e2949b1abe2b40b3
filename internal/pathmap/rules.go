package pathmap

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single rule application.
const DefaultMatchTimeout = 250 * time.Millisecond

// Shape names one of the recognised textual contexts.
type Shape string

const (
	ShapeParens Shape = "parens"
	ShapeQuoted Shape = "quoted"
	ShapeFrame  Shape = "frame"
)

// Rule is one compiled (pattern, rewrite) pair.
type Rule struct {
	Shape       Shape
	Pattern     string
	Replacement string
	re          *regexp2.Regexp
}

// Apply rewrites every match in input.
func (r Rule) Apply(input string) (string, error) {
	return applyRule(r, input)
}

var applyRule = func(r Rule, input string) (string, error) {
	return r.re.Replace(input, r.Replacement, -1, -1)
}

var metaChars = regexp.MustCompile(`[.*+?^${}()|[\]\\]`)

// EscapeName quotes regex metacharacters so name matches literally.
func EscapeName(name string) string {
	return metaChars.ReplaceAllString(name, `\$0`)
}

// NewRules compiles the three rewrite rules turning name/<path> into
// local/<path>.
func NewRules(name, local string, timeout time.Duration) ([]Rule, error) {
	escaped := EscapeName(name)
	target := strings.ReplaceAll(local, "$", "$$")
	specs := []struct {
		shape       Shape
		pattern     string
		replacement string
	}{
		{ShapeParens, `\(` + escaped + `/([^\)]+)\)`, "(" + target + "/${1})"},
		{ShapeQuoted, "(['\"`])" + escaped + "/([^'\"`]+)\\1", "${1}" + target + "/${2}${1}"},
		{ShapeFrame, `(\bat\s+)` + escaped + `/([^\s:]+)`, "${1}" + target + "/${2}"},
	}
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		re, err := compile(spec.pattern, timeout)
		if err != nil {
			return nil, fmt.Errorf("compile %s rule for %q: %w", spec.shape, name, err)
		}
		rules = append(rules, Rule{Shape: spec.shape, Pattern: spec.pattern, Replacement: spec.replacement, re: re})
	}
	return rules, nil
}

// newDetectors compiles match-only patterns for local/<path> in the same
// three shapes.
func newDetectors(local string, timeout time.Duration) ([]*regexp2.Regexp, error) {
	escaped := EscapeName(local)
	patterns := []string{
		`\(` + escaped + `/[^\)]+\)`,
		"(['\"`])" + escaped + "/[^'\"`]+\\1",
		`\bat\s+` + escaped + `/[^\s:]+`,
	}
	detectors := make([]*regexp2.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := compile(pattern, timeout)
		if err != nil {
			return nil, fmt.Errorf("compile detector for %q: %w", local, err)
		}
		detectors = append(detectors, re)
	}
	return detectors, nil
}

func compile(pattern string, timeout time.Duration) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return re, nil
}
