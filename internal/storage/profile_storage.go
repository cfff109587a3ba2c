package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"CareerPortal_ResultsProject/internal/models"

	"github.com/google/uuid"
)

// LocalProfiles serves profile records from the SQLite database; used for development
// and tests instead of Airtable.
type LocalProfiles struct {
	db *DB
}

func (d *DB) Profiles() *LocalProfiles {
	return &LocalProfiles{db: d}
}

// Create inserts a profile, assigning an id when it has none.
func (s *LocalProfiles) Create(ctx context.Context, p *models.UserProfile) error {
	if p.ID == "" {
		p.ID = "rec" + uuid.NewString()
	}
	fields, err := json.Marshal(p.Fields)
	if err != nil {
		return err
	}
	additional, err := json.Marshal(p.Additional)
	if err != nil {
		return err
	}

	_, err = s.db.db.ExecContext(ctx,
		`INSERT INTO profiles(id, code, personality_factors, fields, token_balance, additional_profile) VALUES(?, ?, ?, ?, ?, ?)`,
		p.ID, p.Code, p.PersonalityFactors, string(fields), p.TokenBalance, string(additional))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return err
	}
	return nil
}

func (s *LocalProfiles) FindByCode(ctx context.Context, code string) (*models.UserProfile, error) {
	row := s.db.db.QueryRowContext(ctx, selectProfile+` WHERE code = ?`, code)
	return scanProfile(row)
}

func (s *LocalProfiles) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	row := s.db.db.QueryRowContext(ctx, selectProfile+` WHERE id = ?`, id)
	return scanProfile(row)
}

func (s *LocalProfiles) Update(ctx context.Context, id string, patch ProfilePatch) (*models.UserProfile, error) {
	if patch.TokenBalance != nil {
		if _, err := s.db.db.ExecContext(ctx, `UPDATE profiles SET token_balance = ? WHERE id = ?`, *patch.TokenBalance, id); err != nil {
			return nil, err
		}
	}
	if patch.Additional != nil {
		additional, err := json.Marshal(*patch.Additional)
		if err != nil {
			return nil, err
		}
		if _, err := s.db.db.ExecContext(ctx, `UPDATE profiles SET additional_profile = ? WHERE id = ?`, string(additional), id); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

const selectProfile = `SELECT id, code, personality_factors, fields, token_balance, additional_profile FROM profiles`

func scanProfile(row *sql.Row) (*models.UserProfile, error) {
	var (
		p                  models.UserProfile
		fields, additional string
	)
	if err := row.Scan(&p.ID, &p.Code, &p.PersonalityFactors, &fields, &p.TokenBalance, &additional); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &p.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(additional), &p.Additional); err != nil {
		return nil, fmt.Errorf("decode additional profile of %s: %w", p.ID, err)
	}
	return &p, nil
}
