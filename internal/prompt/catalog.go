package prompt

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownFeature = errors.New("unknown feature")
	ErrInvalidCatalog = errors.New("invalid prompt catalog")
)

//go:embed templates.yaml
var defaultTemplates []byte

// Templates are the prompt texts of one feature.
type Templates struct {
	Prompt string `yaml:"prompt"`
	Image  string `yaml:"image"`
}

type catalogFile struct {
	System      string               `yaml:"system"`
	Temperature float64              `yaml:"temperature"`
	MaxTokens   int                  `yaml:"max_tokens"`
	Features    map[string]Templates `yaml:"features"`
}

// Catalog holds the system prompt and the templates of every feature.
type Catalog struct {
	System      string
	Temperature float64
	MaxTokens   int
	templates   [featureCount]Templates
}

// DefaultCatalog parses the embedded templates.yaml.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(defaultTemplates)
}

// LoadCatalog parses a YAML catalog and checks that every feature is covered: each needs a
// prompt, image features need an image template and text-only features must not have one.
func LoadCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		System:      strings.TrimSpace(file.System),
		Temperature: file.Temperature,
		MaxTokens:   file.MaxTokens,
	}
	seen := make(map[Feature]bool, featureCount)
	for key, tpl := range file.Features {
		f, err := ParseFeature(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		tpl.Prompt = strings.TrimSpace(tpl.Prompt)
		tpl.Image = strings.TrimSpace(tpl.Image)
		c.templates[f] = tpl
		seen[f] = true
	}

	for _, f := range Features() {
		tpl := c.templates[f]
		switch {
		case !seen[f] || tpl.Prompt == "":
			return nil, fmt.Errorf("%w: feature %s has no prompt", ErrInvalidCatalog, f)
		case f.Info().WantsImage && tpl.Image == "":
			return nil, fmt.Errorf("%w: feature %s needs an image template", ErrInvalidCatalog, f)
		case !f.Info().WantsImage && tpl.Image != "":
			return nil, fmt.Errorf("%w: feature %s does not generate images", ErrInvalidCatalog, f)
		}
	}
	return c, nil
}

// Templates returns the templates of a feature.
func (c *Catalog) Templates(f Feature) Templates {
	if !f.valid() {
		return Templates{}
	}
	return c.templates[f]
}
