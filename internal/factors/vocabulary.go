package factors

// Class is the group a factor symbol belongs to.
type Class int

const (
	Primary Class = iota
	Secondary
	Intensified
)

func (c Class) String() string {
	switch c {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Intensified:
		return "intensified"
	default:
		return "unknown"
	}
}

var headings = [...]string{
	Primary:     "## Primary factors",
	Secondary:   "## Secondary factors",
	Intensified: "## Intensified factors",
}

// descriptions holds one sentence per known symbol. Sentences must stay free of digits so
// rendered bullets can be parsed again.
var descriptions = map[string]string{
	"W": "Caring, tender work with people, animals or plants.",
	"K": "Physical, hands-on work that pits strength against material.",
	"S": "Social work that helps, supports and serves others.",
	"Z": "Showing, designing and presenting things to an audience.",
	"V": "Logical, orderly and analytical work with facts.",
	"G": "Creative, conceptual work with ideas and meaning.",
	"M": "Trading, negotiating and business-minded work.",
	"O": "Work centred on speech, taste and oral expression.",

	"w": "Secondary pull towards nurturing and looking after others.",
	"k": "Secondary pull towards physical effort and tangible results.",
	"s": "Secondary pull towards community and cooperation.",
	"z": "Secondary pull towards appearance, form and display.",
	"v": "Secondary pull towards structure, rules and precision.",
	"g": "Secondary pull towards reflection and inventive thinking.",
	"m": "Secondary pull towards ownership, value and exchange.",
	"o": "Secondary pull towards conversation and sensory enjoyment.",

	"K'": "Intensified drive for raw physical force and toughness.",
	"S'": "Intensified commitment to social duty and self-sacrifice.",
	"V'": "Intensified need for rigorous order and control.",
	"G'": "Intensified drive for intuition, vision and deep ideas.",
}

func classify(symbol string) (Class, bool) {
	if _, known := descriptions[symbol]; !known {
		return 0, false
	}
	switch {
	case len(symbol) == 2 && symbol[1] == '\'':
		return Intensified, true
	case symbol[0] >= 'a' && symbol[0] <= 'z':
		return Secondary, true
	default:
		return Primary, true
	}
}

// Intensity labels a magnitude.
func Intensity(magnitude int) string {
	switch {
	case magnitude >= 7:
		return "very high"
	case magnitude >= 5:
		return "high"
	case magnitude >= 3:
		return "moderate"
	default:
		return "low"
	}
}

var labels = map[string]string{
	"W": "care", "K": "physical strength", "S": "social service", "Z": "presentation and design",
	"V": "logic and order", "G": "ideas and creativity", "M": "business", "O": "speech and taste",
}

// Label is a short noun phrase for a primary symbol, "" for anything else.
func Label(symbol string) string {
	return labels[symbol]
}
