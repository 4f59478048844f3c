package model

import "time"

// Meal is one tracked meal for a device, backing the history list.
type Meal struct {
	ID        int64     `json:"id"`
	Endpoint  string    `json:"endpoint"`
	EatenAt   time.Time `json:"eaten_at"`
	CreatedAt time.Time `json:"created_at"`
}
