package prompt

import "fmt"

// Feature identifies one generatable result. The set is closed: add a constant, an entry
// in featureInfo and a template in templates.yaml together.
type Feature int

const (
	CareerPaths Feature = iota
	Strengths
	WorkEnvironment
	DevelopmentPlan
	FutureVision
	featureCount
)

// FeatureInfo is the static description of a feature.
type FeatureInfo struct {
	Key        string `json:"id"`
	Title      string `json:"title"`
	Cost       int    `json:"cost"`
	WantsImage bool   `json:"image"`
}

var featureInfo = [...]FeatureInfo{
	CareerPaths:     {Key: "career_paths", Title: "Career paths that fit you", Cost: 10},
	Strengths:       {Key: "strengths", Title: "Your strengths profile", Cost: 10},
	WorkEnvironment: {Key: "work_environment", Title: "Your ideal work environment", Cost: 20, WantsImage: true},
	DevelopmentPlan: {Key: "development_plan", Title: "Your development plan", Cost: 15},
	FutureVision:    {Key: "future_vision", Title: "A day in your future career", Cost: 25, WantsImage: true},
}

// compile-time check that featureInfo has exactly one entry per feature
var _ = [1]struct{}{}[len(featureInfo)-int(featureCount)]

// Features returns every feature in declaration order.
func Features() []Feature {
	out := make([]Feature, 0, featureCount)
	for f := Feature(0); f < featureCount; f++ {
		out = append(out, f)
	}
	return out
}

// ParseFeature resolves a feature key such as "career_paths".
func ParseFeature(key string) (Feature, error) {
	for f := Feature(0); f < featureCount; f++ {
		if featureInfo[f].Key == key {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, key)
}

// Info returns the static description.
func (f Feature) Info() FeatureInfo {
	if !f.valid() {
		return FeatureInfo{}
	}
	return featureInfo[f]
}

func (f Feature) String() string {
	if !f.valid() {
		return fmt.Sprintf("Feature(%d)", int(f))
	}
	return featureInfo[f].Key
}

func (f Feature) valid() bool {
	return f >= 0 && f < featureCount
}
