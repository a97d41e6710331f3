package migrations

import (
	"context"
	_ "embed"
	"encoding/json"

	"bloodlink-service/internal/app"
	"bloodlink-service/internal/catalog"
	"github.com/uptrace/bun"
)

//go:embed 0002_game_tables.sql
var gameTablesSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.ExecContext(ctx, gameTablesSQL); err != nil {
				return err
			}
			return seedGameData(ctx, db)
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx,
				`DROP TABLE IF EXISTS faq_entries, trivia_catalogs, user_badges, badges, game_scores CASCADE`)
			return err
		},
	)
}

// seedGameData loads the fixed badge definitions, the blood-facts question
// bank and the FAQ table. Seeds are idempotent so re-running is harmless.
func seedGameData(ctx context.Context, db *bun.DB) error {
	for _, rule := range app.BadgeRules() {
		_, err := db.ExecContext(ctx, `
			INSERT INTO badges (code, name, description) VALUES (?, ?, ?)
			ON CONFLICT (code) DO NOTHING`,
			rule.Code, rule.Name, rule.Description)
		if err != nil {
			return err
		}
	}

	bank := catalog.BloodFacts()
	raw, err := json.Marshal(bank)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `
		INSERT INTO trivia_catalogs (game, data) VALUES (?, ?)
		ON CONFLICT (game) DO UPDATE SET data = EXCLUDED.data`,
		bank.Game, string(raw)); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM faq_entries`); err != nil {
		return err
	}
	for i, entry := range catalog.FaqEntries() {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO faq_entries (position, question, answer) VALUES (?, ?, ?)`,
			i, entry.Question, entry.Answer); err != nil {
			return err
		}
	}
	return nil
}
