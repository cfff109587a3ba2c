package storage

import (
	"context"
	"encoding/json"
	"time"

	"CareerPortal_ResultsProject/internal/models"

	"github.com/google/uuid"
)

func (d *DB) CreateGeneration(ctx context.Context, g *models.Generation) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	variants, err := json.Marshal(g.ImageVariants)
	if err != nil {
		return err
	}

	stmt, err := d.db.PrepareContext(ctx,
		`INSERT INTO generations(id, record_id, feature, text, image_url, image_variants, placeholder, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, g.ID, g.RecordID, g.Feature, g.Text, g.ImageURL, string(variants), g.Placeholder, formatTime(g.CreatedAt))
	return err
}

// GetGenerationsByRecordID returns the history of one user, newest first.
func (d *DB) GetGenerationsByRecordID(ctx context.Context, recordID string, limit int) ([]models.Generation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, record_id, feature, text, image_url, image_variants, placeholder, created_at
		FROM generations
		WHERE record_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, recordID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	generations := []models.Generation{}
	for rows.Next() {
		var (
			g                 models.Generation
			variants, created string
		)
		if err := rows.Scan(&g.ID, &g.RecordID, &g.Feature, &g.Text, &g.ImageURL, &variants, &g.Placeholder, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(variants), &g.ImageVariants); err != nil {
			return nil, err
		}
		g.CreatedAt = parseTime(created)
		generations = append(generations, g)
	}
	return generations, rows.Err()
}
