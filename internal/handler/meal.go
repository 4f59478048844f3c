package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rvosen/mealbell/internal/store"
)

const mealHistoryLimit = 50

type MealHandler struct {
	meals  *store.MealStore
	subs   *store.SubscriptionStore
	logger *slog.Logger
}

func NewMealHandler(meals *store.MealStore, subs *store.SubscriptionStore, logger *slog.Logger) *MealHandler {
	return &MealHandler{meals: meals, subs: subs, logger: logger}
}

type trackMealRequest struct {
	Endpoint string     `json:"endpoint"`
	EatenAt  *time.Time `json:"eaten_at"`
}

// Track handles POST /api/meals. It appends a history entry and
// refreshes the subscription's last meal time.
func (h *MealHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req trackMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Endpoint == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "endpoint is required"})
		return
	}

	sub, err := h.subs.GetByEndpoint(req.Endpoint)
	if err != nil {
		h.logger.Error("get subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to look up subscription"})
		return
	}
	if sub == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown endpoint"})
		return
	}

	eatenAt := time.Now().UTC()
	if req.EatenAt != nil {
		eatenAt = req.EatenAt.UTC()
	}

	meal, err := h.meals.Create(req.Endpoint, eatenAt)
	if err != nil {
		h.logger.Error("create meal", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to track meal"})
		return
	}

	if err := h.syncLastMealTime(req.Endpoint); err != nil {
		h.logger.Error("sync last meal time", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to track meal"})
		return
	}

	writeJSON(w, http.StatusCreated, meal)
}

// History handles GET /api/meals?endpoint=...
func (h *MealHandler) History(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Query().Get("endpoint")
	if endpoint == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "endpoint is required"})
		return
	}

	meals, err := h.meals.ListByEndpoint(endpoint, mealHistoryLimit)
	if err != nil {
		h.logger.Error("list meals", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list meals"})
		return
	}
	if meals == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

// Delete handles DELETE /api/meals/{id}. Removing the newest entry
// re-derives the subscription's last meal time from what remains.
func (h *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	meal, err := h.meals.GetByID(id)
	if err != nil {
		h.logger.Error("get meal", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete meal"})
		return
	}
	if meal == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "meal not found"})
		return
	}

	if err := h.meals.Delete(id); err != nil {
		h.logger.Error("delete meal", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete meal"})
		return
	}

	if err := h.syncLastMealTime(meal.Endpoint); err != nil {
		h.logger.Error("sync last meal time", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete meal"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MealHandler) syncLastMealTime(endpoint string) error {
	latest, err := h.meals.LatestMealTime(endpoint)
	if err != nil {
		return err
	}
	return h.subs.SetLastMealTime(endpoint, latest)
}
