package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Amund211/blacksmith/internal/adapters/database"
	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/reporting"
	"github.com/Amund211/blacksmith/internal/strutils"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Repository stores delivered items and closed days
//
// The same queries serve Postgres and SQLite, placeholders are rebound for the
// driver and the Postgres schema is selected per transaction.
type Repository struct {
	db      *sqlx.DB
	dialect database.Dialect
	schema  string

	tracer trace.Tracer
}

func NewRepository(db *sqlx.DB, dialect database.Dialect, schema string) *Repository {
	tracer := otel.Tracer("blacksmith/ledger/repository")

	return &Repository{
		db:      db,
		dialect: dialect,
		schema:  schema,

		tracer: tracer,
	}
}

type dbCraftEntry struct {
	ID             int64     `db:"id"`
	SessionID      string    `db:"session_id"`
	Day            int       `db:"day"`
	CustomerName   string    `db:"customer_name"`
	IsBoss         bool      `db:"is_boss"`
	ItemType       string    `db:"item_type"`
	Material       string    `db:"material"`
	Quality        int       `db:"quality"`
	Value          int       `db:"value"`
	CuttingScore   float64   `db:"cutting_score"`
	ForgingScore   float64   `db:"forging_score"`
	QuenchingScore float64   `db:"quenching_score"`
	ReputationGain int       `db:"reputation_gain"`
	MaterialCost   int       `db:"material_cost"`
	CraftedAt      time.Time `db:"crafted_at"`
}

type dbDayEntry struct {
	SessionID        string    `db:"session_id"`
	Day              int       `db:"day"`
	CustomersServed  int       `db:"customers_served"`
	GoldEarned       int       `db:"gold_earned"`
	ReputationEarned int       `db:"reputation_earned"`
	ClosedAt         time.Time `db:"closed_at"`
}

func (r *Repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	txx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err)
		return nil, err
	}

	if r.dialect == database.DialectPostgres {
		_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(r.schema)))
		if err != nil {
			_ = txx.Rollback()
			err := fmt.Errorf("failed to set search path: %w", err)
			reporting.Report(ctx, err, map[string]string{
				"schema": r.schema,
			})
			return nil, err
		}
	}

	return txx, nil
}

func (r *Repository) RecordCraft(ctx context.Context, record domain.CraftRecord) error {
	ctx, span := r.tracer.Start(ctx, "Repository.RecordCraft")
	defer span.End()

	if !strutils.SessionIDIsNormalized(record.SessionID) {
		err := fmt.Errorf("session id is not normalized")
		reporting.Report(ctx, err, map[string]string{
			"sessionID": record.SessionID,
		})
		return err
	}

	txx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(
		ctx,
		txx.Rebind(`INSERT INTO crafts
		(session_id, day, customer_name, is_boss, item_type, material, quality, value,
			cutting_score, forging_score, quenching_score, reputation_gain, material_cost, crafted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		record.SessionID,
		record.Day,
		record.CustomerName,
		record.IsBoss,
		string(record.Item.Type),
		string(record.Item.Material),
		record.Item.Quality,
		record.Item.Value,
		record.Scores.Cutting,
		record.Scores.Forging,
		record.Scores.Quenching,
		record.ReputationGain,
		record.MaterialCost,
		record.CraftedAt.UTC(),
	)
	if err != nil {
		err := fmt.Errorf("failed to insert craft: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"sessionID": record.SessionID,
			"day":       strconv.Itoa(record.Day),
			"craftedAt": record.CraftedAt.Format(time.RFC3339),
		})
		return err
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	return nil
}

// RecordDay stores the totals of a closed day, recording the same day again overwrites it
func (r *Repository) RecordDay(ctx context.Context, record domain.DayRecord) error {
	ctx, span := r.tracer.Start(ctx, "Repository.RecordDay")
	defer span.End()

	if !strutils.SessionIDIsNormalized(record.SessionID) {
		err := fmt.Errorf("session id is not normalized")
		reporting.Report(ctx, err, map[string]string{
			"sessionID": record.SessionID,
		})
		return err
	}

	txx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(
		ctx,
		txx.Rebind(`INSERT INTO days
		(session_id, day, customers_served, gold_earned, reputation_earned, closed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, day)
		DO UPDATE SET
			customers_served = EXCLUDED.customers_served,
			gold_earned = EXCLUDED.gold_earned,
			reputation_earned = EXCLUDED.reputation_earned,
			closed_at = EXCLUDED.closed_at`),
		record.SessionID,
		record.Day,
		record.CustomersServed,
		record.GoldEarned,
		record.ReputationEarned,
		record.ClosedAt.UTC(),
	)
	if err != nil {
		err := fmt.Errorf("failed to upsert day: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"sessionID": record.SessionID,
			"day":       strconv.Itoa(record.Day),
		})
		return err
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	return nil
}

func (r *Repository) GetHistory(ctx context.Context, sessionID string) (domain.SessionHistory, error) {
	ctx, span := r.tracer.Start(ctx, "Repository.GetHistory")
	defer span.End()

	if !strutils.SessionIDIsNormalized(sessionID) {
		err := fmt.Errorf("session id is not normalized")
		reporting.Report(ctx, err, map[string]string{
			"sessionID": sessionID,
		})
		return domain.SessionHistory{}, err
	}

	txx, err := r.beginTx(ctx)
	if err != nil {
		return domain.SessionHistory{}, err
	}
	defer txx.Rollback()

	var craftEntries []dbCraftEntry
	err = txx.SelectContext(
		ctx,
		&craftEntries,
		txx.Rebind(`SELECT
			id, session_id, day, customer_name, is_boss, item_type, material, quality, value,
			cutting_score, forging_score, quenching_score, reputation_gain, material_cost, crafted_at
		FROM crafts
		WHERE session_id = ?
		ORDER BY crafted_at ASC, id ASC`),
		sessionID,
	)
	if err != nil {
		err := fmt.Errorf("failed to select crafts: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"sessionID": sessionID,
		})
		return domain.SessionHistory{}, err
	}

	var dayEntries []dbDayEntry
	err = txx.SelectContext(
		ctx,
		&dayEntries,
		txx.Rebind(`SELECT
			session_id, day, customers_served, gold_earned, reputation_earned, closed_at
		FROM days
		WHERE session_id = ?
		ORDER BY day ASC`),
		sessionID,
	)
	if err != nil {
		err := fmt.Errorf("failed to select days: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"sessionID": sessionID,
		})
		return domain.SessionHistory{}, err
	}

	history := domain.SessionHistory{
		Crafts: make([]domain.CraftRecord, 0, len(craftEntries)),
		Days:   make([]domain.DayRecord, 0, len(dayEntries)),
	}
	for _, entry := range craftEntries {
		history.Crafts = append(history.Crafts, domain.CraftRecord{
			SessionID:    entry.SessionID,
			Day:          entry.Day,
			CustomerName: entry.CustomerName,
			IsBoss:       entry.IsBoss,
			Item: domain.Item{
				Type:     domain.ItemType(entry.ItemType),
				Material: domain.Material(entry.Material),
				Quality:  entry.Quality,
				Value:    entry.Value,
			},
			Scores: domain.Scores{
				Cutting:   entry.CuttingScore,
				Forging:   entry.ForgingScore,
				Quenching: entry.QuenchingScore,
			},
			ReputationGain: entry.ReputationGain,
			MaterialCost:   entry.MaterialCost,
			CraftedAt:      entry.CraftedAt.UTC(),
		})
	}
	for _, entry := range dayEntries {
		history.Days = append(history.Days, domain.DayRecord{
			SessionID:        entry.SessionID,
			Day:              entry.Day,
			CustomersServed:  entry.CustomersServed,
			GoldEarned:       entry.GoldEarned,
			ReputationEarned: entry.ReputationEarned,
			ClosedAt:         entry.ClosedAt.UTC(),
		})
	}

	return history, nil
}
