// Package factors decodes the compact personality-factor code of a test record
// (e.g. "W4 K-2 S6, V'+5, m--8") into classified tokens and a prompt-ready explanation.
// Everything here is pure: no I/O, no clock.
package factors

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// NoFactorsMessage is returned by Explain when no known token was found.
const NoFactorsMessage = "No personality factors found."

var tokenPattern = regexp.MustCompile(`\b([A-Za-z]{1,2})(')?(?:([+-])\s*)?(-?\d+)`)

// Token is one recognised factor.
type Token struct {
	Symbol    string `json:"symbol"`
	Sign      int    `json:"sign"`
	Magnitude int    `json:"magnitude"`
	Class     Class  `json:"-"`
}

// Value is the signed score.
func (t Token) Value() int {
	return t.Sign * t.Magnitude
}

// String renders the token as symbol plus signed value, e.g. "K-6".
func (t Token) String() string {
	sign := "+"
	if t.Sign < 0 {
		sign = "-"
	}
	return t.Symbol + sign + strconv.Itoa(t.Magnitude)
}

// Direction is "positive" for values above zero and "negative" otherwise.
func (t Token) Direction() string {
	if t.Value() > 0 {
		return "positive"
	}
	return "negative"
}

// Result is the outcome of scanning one factor string.
type Result struct {
	// Tokens holds the recognised tokens in encounter order.
	Tokens []Token
	// Dropped holds raw matches whose symbol is not in the vocabulary.
	Dropped []string
}

// Categories holds the recognised tokens per class, largest magnitude first.
type Categories struct {
	Primary     []Token `json:"primary"`
	Secondary   []Token `json:"secondary"`
	Intensified []Token `json:"intensified"`
}

// Parse scans raw for factor tokens. Unknown symbols are reported in Dropped, never as an error.
func Parse(raw string) Result {
	var res Result
	for _, m := range tokenPattern.FindAllStringSubmatch(raw, -1) {
		symbol := m[1] + m[2]
		value, err := strconv.Atoi(m[4])
		if err != nil {
			res.Dropped = append(res.Dropped, m[0])
			continue
		}
		// a literal that is already negative wins over a separate sign marker
		if m[3] == "-" && value > 0 {
			value = -value
		}
		class, known := classify(symbol)
		if !known {
			res.Dropped = append(res.Dropped, m[0])
			continue
		}
		tok := Token{Symbol: symbol, Sign: 1, Magnitude: value, Class: class}
		if value < 0 {
			tok.Sign = -1
			tok.Magnitude = -value
		} else if value == 0 && m[3] == "-" {
			tok.Sign = -1
		}
		res.Tokens = append(res.Tokens, tok)
	}
	return res
}

// Categories splits the tokens by class, each list stably sorted by descending magnitude.
func (r Result) Categories() Categories {
	var c Categories
	for _, t := range r.Tokens {
		switch t.Class {
		case Primary:
			c.Primary = append(c.Primary, t)
		case Secondary:
			c.Secondary = append(c.Secondary, t)
		case Intensified:
			c.Intensified = append(c.Intensified, t)
		}
	}
	for _, list := range [][]Token{c.Primary, c.Secondary, c.Intensified} {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Magnitude > list[j].Magnitude
		})
	}
	return c
}

// Explain renders the markdown explanation injected into prompts.
func (r Result) Explain() string {
	if len(r.Tokens) == 0 {
		return NoFactorsMessage
	}
	c := r.Categories()

	var sections []string
	for class, list := range [][]Token{Primary: c.Primary, Secondary: c.Secondary, Intensified: c.Intensified} {
		if len(list) == 0 {
			continue
		}
		var b strings.Builder
		b.WriteString(headings[class])
		for _, t := range list {
			fmt.Fprintf(&b, "\n- %s: %s (intensity: %s, direction: %s)",
				t, descriptions[t.Symbol], Intensity(t.Magnitude), t.Direction())
		}
		sections = append(sections, b.String())
	}
	return strings.Join(sections, "\n\n")
}

// Decode is Parse followed by Explain.
func Decode(raw string) string {
	return Parse(raw).Explain()
}

// Categorize is Parse followed by Categories.
func Categorize(raw string) Categories {
	return Parse(raw).Categories()
}
