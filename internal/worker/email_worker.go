package worker

// email_worker.go
// Sends document PDFs from QueueEmail through the mail circuit breaker.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gdsanger/KManager-sub000/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	DocumentID string `json:"document_id,omitempty"`
	ToEmail    string `json:"to_email"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	PDFPath    string `json:"pdf_path"`
}

// DocumentSender delivers one mail; *infra.Mailer implements it.
type DocumentSender interface {
	SendDocument(to, subject, body, pdfPath string) error
}

type EmailWorker struct {
	sender DocumentSender
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(sender DocumentSender, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{sender: sender, cb: cb}
}

// Process sends an email with the document PDF as attachment.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return permanent(fmt.Errorf("email_worker: invalid payload: %w", err))
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	send := func() error {
		return w.sender.SendDocument(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	}
	var err error
	if w.cb != nil {
		err = w.cb.Execute(send)
	} else {
		err = send()
	}
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: document sent")
	return nil
}
