package models

import (
	"sort"
	"strings"
	"time"
)

// Template variable names for the free-text profile fields.
const (
	FieldName      = "name"
	FieldAge       = "age"
	FieldGender    = "gender"
	FieldEducation = "education"
	FieldJob       = "job"
	FieldSector    = "sector"
	FieldSkills    = "skills"
	FieldInterests = "interests"
	FieldValues    = "values"
	FieldGoals     = "goals"
	FieldLocation  = "location"
)

// ProfileFields lists every free-text field a profile may carry, in display order.
var ProfileFields = []string{
	FieldName, FieldAge, FieldGender, FieldEducation, FieldJob, FieldSector,
	FieldSkills, FieldInterests, FieldValues, FieldGoals, FieldLocation,
}

// UserProfile is the external record looked up by access code.
type UserProfile struct {
	ID                 string            `json:"id"`
	Code               string            `json:"code"`
	PersonalityFactors string            `json:"personalityFactors"`
	Fields             map[string]string `json:"fields"`
	TokenBalance       int               `json:"tokenBalance"`
	Additional         AdditionalProfile `json:"additionalProfile"`
}

// Field returns a free-text field, or "" when it is not set.
func (p *UserProfile) Field(name string) string {
	if p.Fields == nil {
		return ""
	}
	return p.Fields[name]
}

// Entry sources.
const (
	SourceUser  = "user"
	SourceVoice = "voice"
	SourceAI    = "ai"
)

// ProfileEntry is one suggested extension of the profile.
type ProfileEntry struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Source  string    `json:"source"`
	AddedAt time.Time `json:"addedAt"`
}

// AdditionalProfile groups suggested entries by category name.
type AdditionalProfile map[string][]ProfileEntry

// Add appends an entry to a category and returns the updated profile.
func (a AdditionalProfile) Add(category string, entry ProfileEntry) AdditionalProfile {
	out := a.clone()
	out[category] = append(out[category], entry)
	return out
}

// Remove drops the entry with the given id; ok is false when nothing matched.
func (a AdditionalProfile) Remove(category, id string) (AdditionalProfile, bool) {
	entries, exists := a[category]
	if !exists {
		return a, false
	}
	out := a.clone()
	kept := make([]ProfileEntry, 0, len(entries))
	found := false
	for _, e := range entries {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return a, false
	}
	if len(kept) == 0 {
		delete(out, category)
	} else {
		out[category] = kept
	}
	return out, true
}

// Text renders all entries as "Category: a; b" lines, categories sorted by name.
func (a AdditionalProfile) Text() string {
	if len(a) == 0 {
		return ""
	}
	categories := make([]string, 0, len(a))
	for c := range a {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var lines []string
	for _, c := range categories {
		contents := make([]string, 0, len(a[c]))
		for _, e := range a[c] {
			if s := strings.TrimSpace(e.Content); s != "" {
				contents = append(contents, s)
			}
		}
		if len(contents) == 0 {
			continue
		}
		lines = append(lines, c+": "+strings.Join(contents, "; "))
	}
	return strings.Join(lines, "\n")
}

func (a AdditionalProfile) clone() AdditionalProfile {
	out := make(AdditionalProfile, len(a)+1)
	for k, v := range a {
		out[k] = append([]ProfileEntry(nil), v...)
	}
	return out
}
