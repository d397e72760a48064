package worker

// document_worker.go
// Renders the PDF of an issued document and queues the mail to the customer.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gdsanger/KManager-sub000/internal/infra"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DocumentJobPayload is the job envelope sent to QueueDocuments.
type DocumentJobPayload struct {
	DocumentID string `json:"document_id"`
}

// EmailEnqueuer is the part of Dispatcher the document worker needs.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type DocumentWorker struct {
	docs           repository.DocumentRepository
	emails         EmailEnqueuer
	pdfStoragePath string
	render         func(*model.SalesDocument, string) (string, error)
}

func NewDocumentWorker(docs repository.DocumentRepository, emails EmailEnqueuer, pdfStoragePath string) *DocumentWorker {
	return &DocumentWorker{
		docs:           docs,
		emails:         emails,
		pdfStoragePath: pdfStoragePath,
		render:         infra.GenerateDocumentPDF,
	}
}

// Process handles a single delivery job:
//  1. load the document with lines, customer and company
//  2. render the PDF from the persisted totals and store its path
//  3. queue an email job when the customer has an address
func (w *DocumentWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload DocumentJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return permanent(fmt.Errorf("document_worker: invalid payload: %w", err))
	}
	id, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		return permanent(fmt.Errorf("document_worker: invalid document_id %q", payload.DocumentID))
	}

	doc, err := w.docs.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return permanent(fmt.Errorf("document_worker: document %s not found", id))
	}
	if err != nil {
		return err
	}
	if doc.IsDraft() {
		return permanent(fmt.Errorf("document_worker: document %s is still a draft", doc.Number))
	}

	pdfPath, err := w.render(doc, w.pdfStoragePath)
	if err != nil {
		return err
	}
	if err := w.docs.SetPDFPath(ctx, doc.ID, pdfPath); err != nil {
		return err
	}
	log.Info().Str("pdf", pdfPath).Str("number", doc.Number).Msg("document_worker: PDF generated")

	if doc.Customer == nil || doc.Customer.Email == "" || w.emails == nil {
		return nil
	}
	title := infra.DocumentTitle(doc.DocumentType)
	job := EmailJobPayload{
		DocumentID: doc.ID.String(),
		ToEmail:    doc.Customer.Email,
		Subject:    fmt.Sprintf("%s %s", title, doc.Number),
		Body: fmt.Sprintf("Guten Tag,\n\nanbei erhalten Sie unsere %s %s über %s %s.\n\nMit freundlichen Grüßen\n%s",
			title, doc.Number, doc.TotalGross.StringFixed(2), doc.Currency, companyName(doc)),
		PDFPath: pdfPath,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		// the PDF exists, only the mail is lost; do not re-render
		log.Warn().Err(err).Str("number", doc.Number).Msg("document_worker: failed to enqueue email")
	}
	return nil
}

func companyName(doc *model.SalesDocument) string {
	if doc.CompanyRef == nil {
		return ""
	}
	return doc.CompanyRef.Name
}
