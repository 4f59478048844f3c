package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rvosen/mealbell/internal/database"
	"github.com/rvosen/mealbell/internal/model"
	"github.com/rvosen/mealbell/internal/store"
)

func setupMealHandler(t *testing.T) (*MealHandler, *store.SubscriptionStore, *store.MealStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	subs := store.NewSubscriptionStore(db)
	meals := store.NewMealStore(db)
	if _, err := subs.Create("https://push.example.com/device", "k", "a", ""); err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	return NewMealHandler(meals, subs, slog.Default()), subs, meals
}

func TestTrackMeal(t *testing.T) {
	h, subs, _ := setupMealHandler(t)

	rec := postJSON(t, h.Track, "POST", "/api/meals",
		`{"endpoint":"https://push.example.com/device"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var meal model.Meal
	if err := json.NewDecoder(rec.Body).Decode(&meal); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if meal.ID == 0 {
		t.Error("expected non-zero meal id")
	}

	sub, _ := subs.GetByEndpoint("https://push.example.com/device")
	if sub.LastMealTime == nil {
		t.Fatal("tracking a meal must set last_meal_time")
	}
	if time.Since(*sub.LastMealTime) > time.Minute {
		t.Errorf("last_meal_time = %v, want about now", sub.LastMealTime)
	}
}

func TestTrackMealExplicitTime(t *testing.T) {
	h, subs, _ := setupMealHandler(t)

	eaten := time.Now().UTC().Add(-90 * time.Minute).Truncate(time.Second)
	body := fmt.Sprintf(`{"endpoint":"https://push.example.com/device","eaten_at":%q}`, eaten.Format(time.RFC3339))
	rec := postJSON(t, h.Track, "POST", "/api/meals", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	sub, _ := subs.GetByEndpoint("https://push.example.com/device")
	if sub.LastMealTime == nil || sub.LastMealTime.Unix() != eaten.Unix() {
		t.Errorf("last_meal_time = %v, want %v", sub.LastMealTime, eaten)
	}
}

func TestTrackMealUnknownEndpoint(t *testing.T) {
	h, _, _ := setupMealHandler(t)

	rec := postJSON(t, h.Track, "POST", "/api/meals",
		`{"endpoint":"https://push.example.com/ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMealHistory(t *testing.T) {
	h, _, meals := setupMealHandler(t)

	base := time.Now().UTC().Add(-4 * time.Hour)
	meals.Create("https://push.example.com/device", base)
	meals.Create("https://push.example.com/device", base.Add(time.Hour))

	rec := postJSON(t, h.History, "GET", "/api/meals?endpoint=https://push.example.com/device", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got []model.Meal
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestDeleteMealRederivesLastMealTime(t *testing.T) {
	h, subs, meals := setupMealHandler(t)

	older := time.Now().UTC().Add(-5 * time.Hour)
	newer := time.Now().UTC().Add(-1 * time.Hour)
	meals.Create("https://push.example.com/device", older)
	newest, _ := meals.Create("https://push.example.com/device", newer)
	subs.SetLastMealTime("https://push.example.com/device", &newer)

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/meals/%d", newest.ID), strings.NewReader(""))
	req.SetPathValue("id", fmt.Sprintf("%d", newest.ID))
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	sub, _ := subs.GetByEndpoint("https://push.example.com/device")
	if sub.LastMealTime == nil || sub.LastMealTime.Unix() != older.Unix() {
		t.Errorf("last_meal_time = %v, want re-derived %v", sub.LastMealTime, older)
	}
}

func TestDeleteLastMealClearsLastMealTime(t *testing.T) {
	h, subs, meals := setupMealHandler(t)

	when := time.Now().UTC().Add(-time.Hour)
	meal, _ := meals.Create("https://push.example.com/device", when)
	subs.SetLastMealTime("https://push.example.com/device", &when)

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/meals/%d", meal.ID), strings.NewReader(""))
	req.SetPathValue("id", fmt.Sprintf("%d", meal.ID))
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	sub, _ := subs.GetByEndpoint("https://push.example.com/device")
	if sub.LastMealTime != nil {
		t.Errorf("last_meal_time = %v, want nil after deleting only meal", sub.LastMealTime)
	}
}

func TestDeleteMealNotFound(t *testing.T) {
	h, _, _ := setupMealHandler(t)

	req := httptest.NewRequest("DELETE", "/api/meals/999", strings.NewReader(""))
	req.SetPathValue("id", "999")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMealHistoryRequiresEndpoint(t *testing.T) {
	h, _, _ := setupMealHandler(t)

	rec := postJSON(t, h.History, "GET", "/api/meals", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
