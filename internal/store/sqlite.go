// Package store persists meal history in a local SQLite database. The
// analysis pipeline itself never touches storage; callers load history here
// and save results back.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"mealmind/internal/agents"
)

// SQLiteStore wraps the meal history database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath and ensures the schema.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS meals (
        id TEXT PRIMARY KEY,
        created_at TEXT NOT NULL,
        meal_date TEXT NOT NULL,
        meal_time TEXT NOT NULL,
        context TEXT NOT NULL DEFAULT '',
        energy_tag TEXT NOT NULL DEFAULT '',
        energy_after TEXT NOT NULL DEFAULT '',
        calories_estimate REAL NOT NULL DEFAULT 0,
        nutrition_json TEXT,
        vision_json TEXT
    );

    CREATE TABLE IF NOT EXISTS analyses (
        request_id TEXT PRIMARY KEY,
        meal_id TEXT NOT NULL,
        created_at TEXT NOT NULL,
        confidence TEXT NOT NULL,
        result_json TEXT NOT NULL,
        FOREIGN KEY (meal_id) REFERENCES meals(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_meals_date ON meals(meal_date);
    CREATE INDEX IF NOT EXISTS idx_analyses_meal ON analyses(meal_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveMeal stores one meal record under the given id.
func (s *SQLiteStore) SaveMeal(ctx context.Context, id string, meal agents.MealRecord) error {
	nutritionJSON, err := marshalNullable(meal.Nutrition)
	if err != nil {
		return fmt.Errorf("failed to encode nutrition: %w", err)
	}
	visionJSON, err := marshalNullable(meal.Vision)
	if err != nil {
		return fmt.Errorf("failed to encode vision: %w", err)
	}

	query := `
        INSERT INTO meals (id, created_at, meal_date, meal_time, context,
            energy_tag, energy_after, calories_estimate, nutrition_json, vision_json)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = s.db.ExecContext(ctx, query,
		id, meal.CreatedAt, meal.Date, meal.Time, meal.Context,
		meal.EnergyTag, meal.EnergyAfter, meal.CaloriesEstimate,
		nutritionJSON, visionJSON)
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}
	return nil
}

// TagEnergy records the post-meal energy rating on an existing meal.
func (s *SQLiteStore) TagEnergy(ctx context.Context, id, energyAfter string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE meals SET energy_after = ? WHERE id = ?`, energyAfter, id)
	if err != nil {
		return fmt.Errorf("failed to tag meal: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to tag meal: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("meal %s not found", id)
	}
	return nil
}

// MealsSince returns meals dated on or after the given date (YYYY-MM-DD),
// oldest first. An empty since returns everything.
func (s *SQLiteStore) MealsSince(ctx context.Context, since string) ([]agents.MealRecord, error) {
	query := `
        SELECT created_at, meal_date, meal_time, context, energy_tag,
            energy_after, calories_estimate, nutrition_json, vision_json
        FROM meals
    `
	args := []any{}
	if since != "" {
		query += " WHERE meal_date >= ?"
		args = append(args, since)
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	var meals []agents.MealRecord
	for rows.Next() {
		var m agents.MealRecord
		var nutritionJSON, visionJSON sql.NullString
		if err := rows.Scan(&m.CreatedAt, &m.Date, &m.Time, &m.Context,
			&m.EnergyTag, &m.EnergyAfter, &m.CaloriesEstimate,
			&nutritionJSON, &visionJSON); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		if err := unmarshalNullable(nutritionJSON, &m.Nutrition); err != nil {
			return nil, fmt.Errorf("failed to decode nutrition: %w", err)
		}
		if err := unmarshalNullable(visionJSON, &m.Vision); err != nil {
			return nil, fmt.Errorf("failed to decode vision: %w", err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

// MealsForDate returns the meals logged on one calendar date.
func (s *SQLiteStore) MealsForDate(ctx context.Context, date string) ([]agents.MealRecord, error) {
	meals, err := s.MealsSince(ctx, date)
	if err != nil {
		return nil, err
	}
	out := meals[:0]
	for _, m := range meals {
		if m.Date == date {
			out = append(out, m)
		}
	}
	return out, nil
}

// SaveAnalysis stores a pipeline result against its meal.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, mealID string, result agents.PipelineResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO analyses (request_id, meal_id, created_at, confidence, result_json)
        VALUES (?, ?, ?, ?, ?)`,
		result.RequestID, mealID, result.Timestamp.UTC().Format(time.RFC3339),
		string(result.ConfidenceScore), string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// Analysis loads a stored pipeline result by request id.
func (s *SQLiteStore) Analysis(ctx context.Context, requestID string) (agents.PipelineResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM analyses WHERE request_id = ?`, requestID).Scan(&payload)
	if err != nil {
		return agents.PipelineResult{}, fmt.Errorf("failed to load analysis %s: %w", requestID, err)
	}
	var result agents.PipelineResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return agents.PipelineResult{}, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return result, nil
}

func marshalNullable[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalNullable[T any](src sql.NullString, dst **T) error {
	if !src.Valid || src.String == "" || src.String == "null" {
		return nil
	}
	var v T
	if err := json.Unmarshal([]byte(src.String), &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}
