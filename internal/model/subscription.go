package model

import "time"

// Supported notification languages.
const (
	LangEnglish = "en"
	LangGerman  = "de"
	LangSpanish = "es"
)

// DefaultTargetHours is the interval-reminder threshold used when a
// subscription has none configured.
const DefaultTargetHours = 3

// Subscription is one device registered for push notifications. The
// endpoint is the natural key: re-subscribing with a known endpoint
// updates the existing record.
type Subscription struct {
	ID                int64      `json:"id"`
	Endpoint          string     `json:"endpoint"`
	P256dhKey         string     `json:"p256dh_key"`
	AuthKey           string     `json:"auth_key"`
	LastMealTime      *time.Time `json:"last_meal_time"`
	QuietHoursStart   *int       `json:"quiet_hours_start"`
	QuietHoursEnd     *int       `json:"quiet_hours_end"`
	Language          string     `json:"language"`
	TargetHours       int        `json:"target_hours"`
	LastDailyReminder *time.Time `json:"last_daily_reminder"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ValidLanguage reports whether lang is one of the supported codes.
func ValidLanguage(lang string) bool {
	switch lang {
	case LangEnglish, LangGerman, LangSpanish:
		return true
	}
	return false
}
