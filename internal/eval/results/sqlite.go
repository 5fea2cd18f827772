package results

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
	_ "modernc.org/sqlite"
)

// schema.sql creates one row per entity and language in labels
// and one row per entity, metric, language and policy in scores.
//
//go:embed schema.sql
var schemaSQL string

// ScoreDB is a SQLite export of a scored table
type ScoreDB struct {
	*sql.DB
}

// OpenScoreDB opens path and applies the schema
func OpenScoreDB(path string) (*ScoreDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &ScoreDB{db}, nil
}

// WriteSQLite replaces the database at path with the contents of t
func WriteSQLite(ctx context.Context, path string, t *labels.Table) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove existing database: %w", err)
	}

	db, err := OpenScoreDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Insert(ctx, t)
}

// Insert stores the labels and scores of t in a single transaction
func (db *ScoreDB) Insert(ctx context.Context, t *labels.Table) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	labelStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO labels (id, lang, gold_label, gold_alt, label, alt)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare label insert: %w", err)
	}
	defer labelStmt.Close()

	for _, r := range t.Records {
		for _, l := range allLanguages(t) {
			f := r.Lang(l)
			if f.GoldLabel == "" && f.GoldAlt.Empty() && f.Label.Empty() && f.Alt.Empty() {
				continue
			}
			_, err := labelStmt.ExecContext(ctx, r.ID, string(l),
				f.GoldLabel, f.GoldAlt.String(), f.Label.String(), f.Alt.String())
			if err != nil {
				return fmt.Errorf("failed to insert labels for %s: %w", r.ID, err)
			}
		}
	}

	scoreStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scores (id, metric, lang, policy, score)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare score insert: %w", err)
	}
	defer scoreStmt.Close()

	for _, row := range ScoreRows(t) {
		var score sql.NullFloat64
		if row.Score != nil {
			score = sql.NullFloat64{Float64: *row.Score, Valid: true}
		}
		if _, err := scoreStmt.ExecContext(ctx, row.ID, row.Metric, row.Lang, row.Policy, score); err != nil {
			return fmt.Errorf("failed to insert score for %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scores: %w", err)
	}
	return nil
}
