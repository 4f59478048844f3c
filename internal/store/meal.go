package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rvosen/mealbell/internal/model"
)

type MealStore struct {
	db *sql.DB
}

func NewMealStore(db *sql.DB) *MealStore {
	return &MealStore{db: db}
}

func (s *MealStore) Create(endpoint string, eatenAt time.Time) (*model.Meal, error) {
	result, err := s.db.Exec(
		`INSERT INTO meals (endpoint, eaten_at) VALUES (?, ?)`, endpoint, eatenAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}
	id, _ := result.LastInsertId()
	return s.GetByID(id)
}

func (s *MealStore) GetByID(id int64) (*model.Meal, error) {
	var m model.Meal
	err := s.db.QueryRow(
		`SELECT id, endpoint, eaten_at, created_at FROM meals WHERE id = ?`, id,
	).Scan(&m.ID, &m.Endpoint, &m.EatenAt, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal: %w", err)
	}
	return &m, nil
}

// ListByEndpoint returns the most recent meals for a device, newest first.
func (s *MealStore) ListByEndpoint(endpoint string, limit int) ([]model.Meal, error) {
	rows, err := s.db.Query(
		`SELECT id, endpoint, eaten_at, created_at FROM meals
		 WHERE endpoint = ? ORDER BY eaten_at DESC LIMIT ?`, endpoint, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	var meals []model.Meal
	for rows.Next() {
		var m model.Meal
		if err := rows.Scan(&m.ID, &m.Endpoint, &m.EatenAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

// LatestMealTime returns the newest eaten_at for a device, or nil if
// the device has no tracked meals.
func (s *MealStore) LatestMealTime(endpoint string) (*time.Time, error) {
	var t time.Time
	err := s.db.QueryRow(
		`SELECT eaten_at FROM meals WHERE endpoint = ? ORDER BY eaten_at DESC LIMIT 1`, endpoint,
	).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest meal time: %w", err)
	}
	return &t, nil
}

func (s *MealStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return nil
}
