package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rvosen/mealbell/internal/model"
)

type SubscriptionStore struct {
	db *sql.DB
}

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

const subscriptionColumns = `id, endpoint, p256dh_key, auth_key, last_meal_time,
	quiet_hours_start, quiet_hours_end, language, target_hours, last_daily_reminder, created_at`

// Create upserts a subscription keyed by endpoint. Re-subscribing with
// a known endpoint refreshes the keys and language instead of creating
// a duplicate record.
func (s *SubscriptionStore) Create(endpoint, p256dh, auth, language string) (*model.Subscription, error) {
	if language == "" {
		language = model.LangEnglish
	}
	_, err := s.db.Exec(
		`INSERT INTO subscriptions (endpoint, p256dh_key, auth_key, language)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key, language = excluded.language`,
		endpoint, p256dh, auth, language,
	)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return s.GetByEndpoint(endpoint)
}

func (s *SubscriptionStore) GetByEndpoint(endpoint string) (*model.Subscription, error) {
	row := s.db.QueryRow(
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE endpoint = ?`, endpoint,
	)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription by endpoint: %w", err)
	}
	return sub, nil
}

// GetAll returns every subscription. The data set is user devices, not
// request traffic, so no pagination.
func (s *SubscriptionStore) GetAll() ([]model.Subscription, error) {
	rows, err := s.db.Query(`SELECT ` + subscriptionColumns + ` FROM subscriptions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (s *SubscriptionStore) SetLastMealTime(endpoint string, t *time.Time) error {
	_, err := s.db.Exec(`UPDATE subscriptions SET last_meal_time = ? WHERE endpoint = ?`, nullTime(t), endpoint)
	if err != nil {
		return fmt.Errorf("set last meal time: %w", err)
	}
	return nil
}

// SetQuietHours stores the suppression window. Passing nil for both
// bounds clears it. Validation (both-or-neither, range, inequality)
// happens at the write boundary.
func (s *SubscriptionStore) SetQuietHours(endpoint string, start, end *int) error {
	_, err := s.db.Exec(
		`UPDATE subscriptions SET quiet_hours_start = ?, quiet_hours_end = ? WHERE endpoint = ?`,
		nullInt(start), nullInt(end), endpoint,
	)
	if err != nil {
		return fmt.Errorf("set quiet hours: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) SetLanguage(endpoint, language string) error {
	_, err := s.db.Exec(`UPDATE subscriptions SET language = ? WHERE endpoint = ?`, language, endpoint)
	if err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) SetTargetHours(endpoint string, hours int) error {
	_, err := s.db.Exec(`UPDATE subscriptions SET target_hours = ? WHERE endpoint = ?`, hours, endpoint)
	if err != nil {
		return fmt.Errorf("set target hours: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) SetLastDailyReminder(id int64, t time.Time) error {
	_, err := s.db.Exec(`UPDATE subscriptions SET last_daily_reminder = ? WHERE id = ?`, t.UTC(), id)
	if err != nil {
		return fmt.Errorf("set last daily reminder: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete subscription by endpoint: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*model.Subscription, error) {
	var sub model.Subscription
	var lastMeal, lastDaily sql.NullTime
	var qhStart, qhEnd sql.NullInt64
	err := row.Scan(
		&sub.ID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &lastMeal,
		&qhStart, &qhEnd, &sub.Language, &sub.TargetHours, &lastDaily, &sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastMeal.Valid {
		t := lastMeal.Time
		sub.LastMealTime = &t
	}
	if lastDaily.Valid {
		t := lastDaily.Time
		sub.LastDailyReminder = &t
	}
	if qhStart.Valid {
		h := int(qhStart.Int64)
		sub.QuietHoursStart = &h
	}
	if qhEnd.Valid {
		h := int(qhEnd.Int64)
		sub.QuietHoursEnd = &h
	}
	return &sub, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}
