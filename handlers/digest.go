package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/stackshelf/backend/models"
	"github.com/stackshelf/backend/service"
	"github.com/stackshelf/backend/store"
	"github.com/stackshelf/backend/utils"
)

// DigestSender is satisfied by *service.DigestService.
type DigestSender interface {
	Send(ctx context.Context, batchRunID string) error
}

// DigestHandler manages the digest SMTP settings and manual sends. The SMTP
// password is encrypted at rest when EncKey is set.
type DigestHandler struct {
	DB     *store.DB
	Sender DigestSender
	EncKey []byte
}

type DigestConfigRequest struct {
	SMTPHost     string   `json:"smtpHost"`
	SMTPPort     int      `json:"smtpPort"`
	SMTPUser     string   `json:"smtpUser"`
	SMTPPassword string   `json:"smtpPassword"`
	SenderMail   string   `json:"senderMail"`
	Recipients   []string `json:"recipients"`
	Enabled      bool     `json:"enabled"`
}

// DigestConfigResponse never echoes the password back.
type DigestConfigResponse struct {
	SMTPHost    string   `json:"smtpHost"`
	SMTPPort    int      `json:"smtpPort"`
	SMTPUser    string   `json:"smtpUser"`
	SenderMail  string   `json:"senderMail"`
	Recipients  []string `json:"recipients"`
	Enabled     bool     `json:"enabled"`
	HasPassword bool     `json:"hasPassword"`
}

// GetConfig serves GET /api/admin/digest/config.
func (h *DigestHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.DB.GetDigestConfig(r.Context())
	if err != nil {
		http.Error(w, `{"error":"failed to load digest config"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if cfg == nil {
		json.NewEncoder(w).Encode(DigestConfigResponse{})
		return
	}
	json.NewEncoder(w).Encode(DigestConfigResponse{
		SMTPHost:    cfg.SMTPHost,
		SMTPPort:    cfg.SMTPPort,
		SMTPUser:    cfg.SMTPUser,
		SenderMail:  cfg.SenderMail,
		Recipients:  cfg.Recipients,
		Enabled:     cfg.Enabled,
		HasPassword: cfg.SMTPPassword != "",
	})
}

// SaveConfig serves PUT /api/admin/digest/config.
func (h *DigestHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var req DigestConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	password := req.SMTPPassword
	if len(h.EncKey) == 32 && password != "" {
		enc, err := utils.Encrypt([]byte(password), h.EncKey)
		if err != nil {
			log.Printf("digest config: encrypt smtp password: %v", err)
			http.Error(w, `{"error":"failed to encrypt password"}`, http.StatusInternalServerError)
			return
		}
		password = enc
	}
	cfg := &models.DigestConfig{
		SMTPHost:     req.SMTPHost,
		SMTPPort:     req.SMTPPort,
		SMTPUser:     req.SMTPUser,
		SMTPPassword: password,
		SenderMail:   req.SenderMail,
		Recipients:   req.Recipients,
		Enabled:      req.Enabled,
	}
	if err := h.DB.UpsertDigestConfig(r.Context(), cfg); err != nil {
		http.Error(w, `{"error":"failed to save digest config"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendNow serves POST /api/admin/digest/send.
func (h *DigestHandler) SendNow(w http.ResponseWriter, r *http.Request) {
	if err := h.Sender.Send(r.Context(), ""); err != nil {
		if errors.Is(err, service.ErrDigestNotConfigured) {
			http.Error(w, `{"error":"digest is not configured or disabled"}`, http.StatusBadRequest)
			return
		}
		log.Printf("digest send: %v", err)
		http.Error(w, `{"error":"failed to send digest"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "digest sent"})
}
