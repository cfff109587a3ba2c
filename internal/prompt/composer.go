// Package prompt holds the feature catalog and fills its templates with profile values.
package prompt

import (
	"regexp"
	"strings"

	"CareerPortal_ResultsProject/internal/factors"
	"CareerPortal_ResultsProject/internal/models"
)

// Extra template variables besides the profile fields.
const (
	VarPersonalityExplanation = "personalityExplanation"
	VarAdditionalProfile      = "additionalProfile"
	VarTopFactors             = "topFactors"
	VarFeatureTitle           = "featureTitle"
)

var (
	placeholderPattern = regexp.MustCompile(`\{([A-Za-z][A-Za-z0-9_]*)\}`)
	leftoverPattern    = regexp.MustCompile(`\{[^{}\n]*\}`)
)

// Composition is a filled template.
type Composition struct {
	Text string
	// Missing lists placeholder names that had no value and were replaced with "".
	Missing []string
	// Leftover lists brace expressions still present after substitution.
	Leftover []string
}

// Compose replaces every {name} placeholder with data[name] in a single pass. Missing or
// empty values become "". Anything that still looks like a placeholder afterwards is
// reported in Leftover for diagnostics.
func Compose(template string, data map[string]string) Composition {
	var missing []string
	text := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		value := data[name]
		if value == "" {
			missing = append(missing, name)
		}
		return value
	})
	return Composition{
		Text:     text,
		Missing:  missing,
		Leftover: leftoverPattern.FindAllString(text, -1),
	}
}

// Variables builds the template data of a profile: its free-text fields plus the decoded
// factor explanation, the additional profile and the strongest primary factors.
func Variables(p *models.UserProfile, decoded factors.Result) map[string]string {
	data := make(map[string]string, len(p.Fields)+3)
	for k, v := range p.Fields {
		data[k] = strings.TrimSpace(v)
	}
	data[VarPersonalityExplanation] = decoded.Explain()
	data[VarAdditionalProfile] = p.Additional.Text()
	data[VarTopFactors] = topFactors(decoded, 3)
	return data
}

func topFactors(decoded factors.Result, n int) string {
	var out []string
	for _, t := range decoded.Categories().Primary {
		if len(out) == n {
			break
		}
		if t.Value() > 0 {
			out = append(out, factors.Label(t.Symbol))
		}
	}
	return strings.Join(out, ", ")
}
