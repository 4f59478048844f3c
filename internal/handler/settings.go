package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rvosen/mealbell/internal/model"
	"github.com/rvosen/mealbell/internal/store"
)

type SettingsHandler struct {
	subs   *store.SubscriptionStore
	logger *slog.Logger
}

func NewSettingsHandler(subs *store.SubscriptionStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{subs: subs, logger: logger}
}

type updateSettingsRequest struct {
	Endpoint        string  `json:"endpoint"`
	QuietHoursStart *int    `json:"quiet_hours_start"`
	QuietHoursEnd   *int    `json:"quiet_hours_end"`
	ClearQuietHours bool    `json:"clear_quiet_hours"`
	Language        *string `json:"language"`
	TargetHours     *int    `json:"target_hours"`
}

// Update handles PUT /api/settings. Only the provided fields change.
// Invalid values are rejected here so the scheduling engine never has
// to; it only ever warns on records that slipped past this boundary.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Endpoint == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "endpoint is required"})
		return
	}

	if msg := validateSettings(&req); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
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

	if req.ClearQuietHours {
		err = h.subs.SetQuietHours(req.Endpoint, nil, nil)
	} else if req.QuietHoursStart != nil {
		err = h.subs.SetQuietHours(req.Endpoint, req.QuietHoursStart, req.QuietHoursEnd)
	}
	if err == nil && req.Language != nil {
		err = h.subs.SetLanguage(req.Endpoint, *req.Language)
	}
	if err == nil && req.TargetHours != nil {
		err = h.subs.SetTargetHours(req.Endpoint, *req.TargetHours)
	}
	if err != nil {
		h.logger.Error("update settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update settings"})
		return
	}

	updated, err := h.subs.GetByEndpoint(req.Endpoint)
	if err != nil {
		h.logger.Error("reload subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update settings"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func validateSettings(req *updateSettingsRequest) string {
	if !req.ClearQuietHours {
		if (req.QuietHoursStart == nil) != (req.QuietHoursEnd == nil) {
			return "quiet hours must be set together or not at all"
		}
		if req.QuietHoursStart != nil {
			s, e := *req.QuietHoursStart, *req.QuietHoursEnd
			if s < 0 || s > 23 || e < 0 || e > 23 {
				return "quiet hours must be between 0 and 23"
			}
			if s == e {
				return "quiet hours start and end must differ"
			}
		}
	}
	if req.Language != nil && !model.ValidLanguage(*req.Language) {
		return "language must be one of en, de, es"
	}
	if req.TargetHours != nil && (*req.TargetHours < 1 || *req.TargetHours > 24) {
		return "target hours must be between 1 and 24"
	}
	return ""
}
