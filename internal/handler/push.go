package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rvosen/mealbell/internal/model"
	"github.com/rvosen/mealbell/internal/push"
	"github.com/rvosen/mealbell/internal/store"
)

type PushHandler struct {
	subs    *store.SubscriptionStore
	service *push.Service
	logger  *slog.Logger
}

func NewPushHandler(subs *store.SubscriptionStore, svc *push.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{subs: subs, service: svc, logger: logger}
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
	Language string `json:"language"`
}

// Subscribe handles POST /api/push/subscribe. Subscribing with an
// already-registered endpoint updates that record in place.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Endpoint == "" || req.P256dh == "" || req.Auth == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "endpoint, p256dh, and auth are required"})
		return
	}
	if req.Language != "" && !model.ValidLanguage(req.Language) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "language must be one of en, de, es"})
		return
	}

	sub, err := h.subs.Create(req.Endpoint, req.P256dh, req.Auth, req.Language)
	if err != nil {
		h.logger.Error("create subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save subscription"})
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe handles DELETE /api/push/subscribe, keyed by endpoint.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Endpoint == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "endpoint is required"})
		return
	}

	if err := h.subs.DeleteByEndpoint(req.Endpoint); err != nil {
		h.logger.Error("delete subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete subscription"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetVAPIDKey handles GET /api/push/vapid-key.
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}
