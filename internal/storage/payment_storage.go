package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"CareerPortal_ResultsProject/internal/models"
)

func (d *DB) CreatePayment(ctx context.Context, p models.Payment) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO payments(intent_id, record_id, package, tokens, amount, currency, status, created_at, updated_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.IntentID, p.RecordID, p.Package, p.Tokens, p.Amount, p.Currency, p.Status,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (d *DB) GetPayment(ctx context.Context, intentID string) (models.Payment, error) {
	var (
		p                  models.Payment
		created, updated string
	)
	row := d.db.QueryRowContext(ctx,
		`SELECT intent_id, record_id, package, tokens, amount, currency, status, created_at, updated_at
		 FROM payments WHERE intent_id = ?`, intentID)
	if err := row.Scan(&p.IntentID, &p.RecordID, &p.Package, &p.Tokens, &p.Amount, &p.Currency, &p.Status, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, err
	}
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

// SettlePayment moves a payment to status and reports whether this call made the change,
// so exactly one caller wins each transition. Any status may follow pending; succeeded may
// also follow failed because a failed attempt can be retried on the same intent.
func (d *DB) SettlePayment(ctx context.Context, intentID, status string) (bool, error) {
	query := `UPDATE payments SET status = ?, updated_at = ? WHERE intent_id = ? AND status = ?`
	args := []any{status, formatTime(time.Now()), intentID, models.PaymentPending}
	if status == models.PaymentSucceeded {
		query = `UPDATE payments SET status = ?, updated_at = ? WHERE intent_id = ? AND status IN (?, ?)`
		args = append(args, models.PaymentFailed)
	}
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReopenPayment puts a payment back to pending after its tokens could not be credited.
func (d *DB) ReopenPayment(ctx context.Context, intentID string) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE payments SET status = ?, updated_at = ? WHERE intent_id = ?`,
		models.PaymentPending, formatTime(time.Now()), intentID)
	return err
}
