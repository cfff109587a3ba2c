package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"CareerPortal_ResultsProject/internal/models"

	"github.com/mehanizm/airtable"
)

// Airtable column names.
const (
	columnCode       = "Code"
	columnFactors    = "BBT"
	columnTokens     = "Tokens"
	columnAdditional = "AdditionalProfile"
)

// fieldColumns maps template variable names to Airtable columns.
var fieldColumns = map[string]string{
	models.FieldName:      "Name",
	models.FieldAge:       "Age",
	models.FieldGender:    "Gender",
	models.FieldEducation: "Education",
	models.FieldJob:       "Job",
	models.FieldSector:    "Sector",
	models.FieldSkills:    "Skills",
	models.FieldInterests: "Interests",
	models.FieldValues:    "Values",
	models.FieldGoals:     "Goals",
	models.FieldLocation:  "Location",
}

// AirtableProfiles is the production ProfileStore.
type AirtableProfiles struct {
	table *airtable.Table
}

func NewAirtableProfiles(apiKey, baseID, tableName string) *AirtableProfiles {
	return NewAirtableProfilesWithClient(airtable.NewClient(apiKey), baseID, tableName)
}

// NewAirtableProfilesWithClient uses a preconfigured client (base URL, rate limit).
func NewAirtableProfilesWithClient(client *airtable.Client, baseID, tableName string) *AirtableProfiles {
	return &AirtableProfiles{table: client.GetTable(baseID, tableName)}
}

func isAirtableNotFound(err error) bool {
	var he *airtable.HTTPClientError
	return errors.As(err, &he) && he.StatusCode == http.StatusNotFound
}

func (s *AirtableProfiles) FindByCode(ctx context.Context, code string) (*models.UserProfile, error) {
	records, err := s.table.GetRecords().
		WithFilterFormula(codeFormula(code)).
		MaxRecords(1).
		DoContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("airtable lookup: %w", err)
	}
	if records == nil || len(records.Records) == 0 {
		return nil, ErrNotFound
	}
	rec := records.Records[0]
	return profileFromFields(rec.ID, rec.Fields)
}

func (s *AirtableProfiles) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	rec, err := s.table.GetRecordContext(ctx, id)
	if err != nil {
		if isAirtableNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("airtable get %s: %w", id, err)
	}
	return profileFromFields(rec.ID, rec.Fields)
}

func (s *AirtableProfiles) Update(ctx context.Context, id string, patch ProfilePatch) (*models.UserProfile, error) {
	fields, err := patchFields(patch)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}
	updated, err := s.table.UpdateRecordsPartialContext(ctx, &airtable.Records{
		Records: []*airtable.Record{{ID: id, Fields: fields}},
	})
	if err != nil {
		if isAirtableNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("airtable update %s: %w", id, err)
	}
	if updated == nil || len(updated.Records) == 0 {
		return nil, ErrNotFound
	}
	rec := updated.Records[0]
	return profileFromFields(rec.ID, rec.Fields)
}

// codeFormula builds a filterByFormula expression matching the code column exactly.
func codeFormula(code string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(code)
	return fmt.Sprintf("{%s} = '%s'", columnCode, escaped)
}

func profileFromFields(id string, fields map[string]any) (*models.UserProfile, error) {
	p := &models.UserProfile{
		ID:                 id,
		Code:               stringValue(fields[columnCode]),
		PersonalityFactors: stringValue(fields[columnFactors]),
		Fields:             make(map[string]string, len(fieldColumns)),
		TokenBalance:       intValue(fields[columnTokens]),
		Additional:         models.AdditionalProfile{},
	}
	for name, column := range fieldColumns {
		if v := stringValue(fields[column]); v != "" {
			p.Fields[name] = v
		}
	}
	if raw := stringValue(fields[columnAdditional]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.Additional); err != nil {
			return nil, fmt.Errorf("decode additional profile of %s: %w", id, err)
		}
	}
	return p, nil
}

func patchFields(patch ProfilePatch) (map[string]any, error) {
	fields := map[string]any{}
	if patch.TokenBalance != nil {
		fields[columnTokens] = *patch.TokenBalance
	}
	if patch.Additional != nil {
		raw, err := json.Marshal(*patch.Additional)
		if err != nil {
			return nil, err
		}
		fields[columnAdditional] = string(raw)
	}
	return fields, nil
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

func intValue(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	default:
		return 0
	}
}
