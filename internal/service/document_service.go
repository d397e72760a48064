package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DocumentJobDispatcher hands issued documents to the async PDF/mail pipeline.
type DocumentJobDispatcher interface {
	EnqueueDocumentDelivery(ctx context.Context, documentID uuid.UUID) error
}

type DocumentService interface {
	Create(ctx context.Context, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error)
	List(ctx context.Context, filter dto.DocumentFilter) (*dto.DocumentListResponse, error)
	AddLine(ctx context.Context, documentID uuid.UUID, req dto.AddLineRequest) (*dto.DocumentResponse, error)
	RemoveLine(ctx context.Context, documentID, lineID uuid.UUID) (*dto.DocumentResponse, error)
	// Preview recalculates without writing anything.
	Preview(ctx context.Context, id uuid.UUID) (*dto.TotalsResponse, error)
	Recalculate(ctx context.Context, id uuid.UUID) (*dto.TotalsResponse, error)
	// Issue moves a DRAFT to ISSUED and queues PDF rendering and mailing.
	Issue(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error)
}

type documentService struct {
	repo       repository.DocumentRepository
	customers  repository.CustomerRepository
	terms      repository.PaymentTermRepository
	items      repository.ItemRepository
	taxRates   repository.TaxRateRepository
	tax        TaxService
	calc       CalculationService
	activity   ActivityLogger
	dispatcher DocumentJobDispatcher
	now        func() time.Time
}

func NewDocumentService(
	repo repository.DocumentRepository,
	customers repository.CustomerRepository,
	terms repository.PaymentTermRepository,
	items repository.ItemRepository,
	taxRates repository.TaxRateRepository,
	tax TaxService,
	calc CalculationService,
	activity ActivityLogger,
	dispatcher DocumentJobDispatcher,
) DocumentService {
	return &documentService{
		repo:       repo,
		customers:  customers,
		terms:      terms,
		items:      items,
		taxRates:   taxRates,
		tax:        tax,
		calc:       calc,
		activity:   activity,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

func (s *documentService) Create(ctx context.Context, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	companyID, err := parseUUID("company_id", req.CompanyID)
	if err != nil {
		return nil, err
	}
	customerID, err := parseUUID("customer_id", req.CustomerID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("Kunde: %w", notFound(err))
	}
	if customer.CompanyID != companyID {
		return nil, model.NewValidationError("customer_id", "Kunde gehört nicht zum Mandanten")
	}

	issue := model.DateOf(s.now())
	if req.IssueDate != "" {
		if issue, err = model.ParseDate(req.IssueDate); err != nil {
			return nil, model.NewValidationError("issue_date", "ungültiges Datum")
		}
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "EUR"
	}

	doc := &model.SalesDocument{
		CompanyID:    companyID,
		CustomerID:   customerID,
		DocumentType: req.DocumentType,
		Status:       model.DocumentStatusDraft,
		Subject:      req.Subject,
		IssueDate:    issue,
		Currency:     currency,
	}

	termID, err := parseOptionalUUID("payment_term_id", req.PaymentTermID)
	if err != nil {
		return nil, err
	}
	if termID != nil {
		term, err := s.terms.FindByID(ctx, *termID)
		if err != nil {
			return nil, fmt.Errorf("Zahlungsbedingung: %w", notFound(err))
		}
		due := term.CalculateDueDate(issue)
		doc.PaymentTermID = termID
		doc.DueDate = &due
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		number, err := nextDocumentNumber(ctx, s.repo, tx, companyID, doc.DocumentType, issue)
		if err != nil {
			return err
		}
		doc.Number = number
		return s.repo.CreateTx(ctx, tx, doc)
	})
	if err != nil {
		return nil, duplicate(err)
	}

	s.logActivity(ctx, doc, ActivityDocumentCreated, fmt.Sprintf("Beleg %s angelegt", doc.Number))
	resp := toDocumentResponse(doc)
	return &resp, nil
}

func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := toDocumentResponse(doc)
	return &resp, nil
}

func (s *documentService) List(ctx context.Context, filter dto.DocumentFilter) (*dto.DocumentListResponse, error) {
	docs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.DocumentListResponse{
		Data:       make([]dto.DocumentResponse, 0, len(docs)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range docs {
		out.Data = append(out.Data, toDocumentResponse(&docs[i]))
	}
	return out, nil
}

func (s *documentService) loadDraft(ctx context.Context, id uuid.UUID) (*model.SalesDocument, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !doc.IsDraft() {
		return nil, ErrDocumentLocked
	}
	return doc, nil
}

// ── AddLine ───────────────────────────────────────────────────────────────────
// With an item the line gets the item snapshot and the tax rate determined for
// the document's customer; explicit price / tax rate in the request win.

func (s *documentService) AddLine(ctx context.Context, documentID uuid.UUID, req dto.AddLineRequest) (*dto.DocumentResponse, error) {
	doc, err := s.loadDraft(ctx, documentID)
	if err != nil {
		return nil, err
	}

	line := model.SalesDocumentLine{
		DocumentID:  doc.ID,
		PositionNo:  doc.NextPositionNo(),
		Description: req.Description,
		Quantity:    req.Quantity,
		Discount:    req.Discount,
	}

	itemID, err := parseOptionalUUID("item_id", req.ItemID)
	if err != nil {
		return nil, err
	}
	if itemID != nil {
		item, err := s.items.FindByID(ctx, *itemID)
		if err != nil {
			return nil, fmt.Errorf("Artikel: %w", notFound(err))
		}
		ApplyItemSnapshot(&line, item)
		rate, err := s.tax.DetermineTaxRate(ctx, doc.Customer, item.TaxRate, issuerCountry(s.tax, doc.CompanyRef))
		if err != nil {
			return nil, err
		}
		ApplyTaxRate(&line, rate)
	} else if req.UnitPriceNet == nil || req.TaxRateID == nil || req.Description == "" {
		return nil, model.NewValidationError("item_id", "Position ohne Artikel braucht Beschreibung, Preis und Steuersatz")
	}

	if req.UnitPriceNet != nil {
		if req.UnitPriceNet.IsNegative() {
			return nil, model.NewValidationError("unit_price_net", "Preis darf nicht negativ sein")
		}
		line.UnitPriceNet = *req.UnitPriceNet
	}
	if req.IsDiscountable != nil {
		line.IsDiscountable = *req.IsDiscountable
	}
	if err := checkDiscount("discount", line.Discount, line.IsDiscountable); err != nil {
		return nil, err
	}
	taxID, err := parseOptionalUUID("tax_rate_id", req.TaxRateID)
	if err != nil {
		return nil, err
	}
	if taxID != nil {
		rate, err := s.taxRates.FindByID(ctx, *taxID)
		if err != nil {
			return nil, fmt.Errorf("Steuersatz: %w", notFound(err))
		}
		ApplyTaxRate(&line, rate)
	}
	if line.TaxRateID == nil {
		return nil, model.NewValidationError("tax_rate_id", "Steuersatz fehlt")
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.AddLineTx(ctx, tx, &line); err != nil {
			return err
		}
		doc.Lines = append(doc.Lines, line)
		_, err := s.calc.RecalculateTx(ctx, tx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toDocumentResponse(doc)
	return &resp, nil
}

func (s *documentService) RemoveLine(ctx context.Context, documentID, lineID uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := s.loadDraft(ctx, documentID)
	if err != nil {
		return nil, err
	}
	kept := doc.Lines[:0]
	for _, l := range doc.Lines {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	doc.Lines = kept

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DeleteLineTx(ctx, tx, documentID, lineID); err != nil {
			return notFound(err)
		}
		_, err := s.calc.RecalculateTx(ctx, tx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toDocumentResponse(doc)
	return &resp, nil
}

func (s *documentService) Preview(ctx context.Context, id uuid.UUID) (*dto.TotalsResponse, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	totals, err := s.calc.Recalculate(ctx, doc, false)
	if err != nil {
		return nil, err
	}
	return toTotalsResponse(totals, false), nil
}

func (s *documentService) Recalculate(ctx context.Context, id uuid.UUID) (*dto.TotalsResponse, error) {
	doc, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	totals, err := s.calc.Recalculate(ctx, doc, true)
	if err != nil {
		return nil, err
	}
	return toTotalsResponse(totals, true), nil
}

func (s *documentService) Issue(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(doc.Lines) == 0 {
		return nil, model.NewValidationError("lines", "Beleg ohne Positionen kann nicht ausgestellt werden")
	}
	if err := s.repo.UpdateStatus(ctx, id, model.DocumentStatusDraft, model.DocumentStatusIssued); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentLocked
		}
		return nil, err
	}
	doc.Status = model.DocumentStatusIssued

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueDocumentDelivery(ctx, doc.ID); err != nil {
			// the document is issued either way, delivery can be re-queued
			log.Error().Err(err).Str("document_id", doc.ID.String()).Msg("enqueue document delivery failed")
		}
	}
	s.logActivity(ctx, doc, ActivityDocumentIssued, fmt.Sprintf("Beleg %s ausgestellt", doc.Number))
	resp := toDocumentResponse(doc)
	return &resp, nil
}

func (s *documentService) logActivity(ctx context.Context, d *model.SalesDocument, typ, title string) {
	if s.activity == nil {
		return
	}
	companyID := d.CompanyID
	err := s.activity.Log(ctx, &model.Activity{
		CompanyID:   &companyID,
		Domain:      DomainDocument,
		Type:        typ,
		Title:       title,
		Description: fmt.Sprintf("%s %s %s", d.TotalGross.StringFixed(2), d.Currency, d.Status),
	})
	if err != nil {
		log.Warn().Err(err).Str("type", typ).Str("document_id", d.ID.String()).Msg("activity log failed")
	}
}
