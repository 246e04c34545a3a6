package queue

import (
	"context"
	"log/slog"

	"github.com/codigix/Furnituredemo/internal/usecase"
)

// MailSender is implemented by the SMTP mailer. Send retries
// internally; an error here means the attempts are exhausted.
type MailSender interface {
	Send(to, subject, body string) error
}

// MailJobHandler delivers queued confirmation mails. Exhausted
// sends are logged and dropped, never requeued, so a dead SMTP
// host cannot pile the queue up forever.
type MailJobHandler struct {
	mailer MailSender
	log    *slog.Logger
}

func NewMailJobHandler(mailer MailSender, log *slog.Logger) *MailJobHandler {
	return &MailJobHandler{mailer: mailer, log: log}
}

// HandleMail is intended to be used with queue.JSONHandler[usecase.MailJob].
func (h *MailJobHandler) HandleMail(_ context.Context, job usecase.MailJob) error {
	if err := h.mailer.Send(job.To, job.Subject, job.Body); err != nil {
		h.log.Error("confirmation mail dropped", "to", job.To, "err", err)
	}
	return nil
}
