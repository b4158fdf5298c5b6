package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Mailer sends transactional email. The default implementation only logs;
// real delivery is wired in by replacing the provider.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, name string) error
}

// LogMailer is a demo provider that records the send instead of delivering.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, name string) error {
	m.Logger.Info("password reset email (demo, not delivered)", "to", email, "name", name)
	return nil
}

type Handler struct {
	logger *slog.Logger
	mailer Mailer
}

func NewHandler(logger *slog.Logger, mailer Mailer) *Handler {
	if mailer == nil {
		mailer = &LogMailer{Logger: logger}
	}
	return &Handler{logger: logger, mailer: mailer}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypePasswordReset, h.HandlePasswordReset)
}

func (h *Handler) HandlePasswordReset(ctx context.Context, t *asynq.Task) error {
	var payload PasswordResetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := h.mailer.SendPasswordReset(ctx, payload.Email, payload.Name); err != nil {
		h.logger.Error("password reset email failed", "user_id", payload.UserID, "error", err)
		return err
	}

	h.logger.Info("password reset email sent", "user_id", payload.UserID)
	return nil
}
