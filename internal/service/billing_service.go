package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/logger"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrContractNotDue is returned for a contract that stopped being due between
// the due scan and its billing transaction (deactivated or billed elsewhere).
var ErrContractNotDue = errors.New("Vertrag ist nicht fällig")

// BillingResult is the outcome of billing one contract.
//
//   - Created && Err == nil: a SUCCESS run and its document were written
//   - Created && Err != nil: a FAILED run was written, Err is the cause
//   - !Created && Run != nil: the contract was already billed for that date
//   - Run == nil: nothing was written, Err explains why
type BillingResult struct {
	ContractID uuid.UUID
	Run        *model.ContractRun
	Created    bool
	Err        error
}

type BillingService interface {
	// GenerateDue bills every contract due on today. Each contract is an
	// isolated unit of work; a failing contract does not stop the others.
	// Calling it twice for the same date creates no additional runs.
	GenerateDue(ctx context.Context, today time.Time) ([]BillingResult, error)
	// BillContract bills a single contract for today.
	BillContract(ctx context.Context, contractID uuid.UUID, today time.Time) BillingResult
	RunsForDate(ctx context.Context, date time.Time) ([]model.ContractRun, error)
}

type billingService struct {
	db        *gorm.DB
	contracts repository.ContractRepository
	runs      repository.ContractRunRepository
	documents repository.DocumentRepository
	calc      CalculationService
	activity  ActivityLogger
	log       zerolog.Logger
}

func NewBillingService(
	contracts repository.ContractRepository,
	runs repository.ContractRunRepository,
	documents repository.DocumentRepository,
	calc CalculationService,
	activity ActivityLogger,
) BillingService {
	return &billingService{
		db:        contracts.DB(),
		contracts: contracts,
		runs:      runs,
		documents: documents,
		calc:      calc,
		activity:  activity,
		log:       logger.WithComponent("billing"),
	}
}

func (s *billingService) GenerateDue(ctx context.Context, today time.Time) ([]BillingResult, error) {
	today = model.DateOf(today)
	due, err := s.contracts.ListDue(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("fällige Verträge laden: %w", err)
	}

	// runs already written for today whose contract left the due set
	// (schedule advanced) are reported as they are
	earlier, err := s.runs.ListByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("Abrechnungsläufe laden: %w", err)
	}
	dueIDs := make(map[uuid.UUID]struct{}, len(due))
	for _, c := range due {
		dueIDs[c.ID] = struct{}{}
	}

	results := make([]BillingResult, 0, len(due)+len(earlier))
	var created, existing, failed int
	for i := range earlier {
		if _, ok := dueIDs[earlier[i].ContractID]; ok {
			continue
		}
		results = append(results, BillingResult{ContractID: earlier[i].ContractID, Run: &earlier[i]})
		existing++
	}
	for _, c := range due {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := s.BillContract(ctx, c.ID, today)
		results = append(results, res)

		var ev *zerolog.Event
		switch {
		case res.Err != nil:
			failed++
			ev = s.log.Error().Err(res.Err)
		case res.Created:
			created++
			ev = s.log.Info()
		default:
			existing++
			ev = s.log.Info()
		}
		if res.Run != nil {
			ev = ev.Str("run_id", res.Run.ID.String()).Str("status", res.Run.Status)
		}
		ev.Str("contract_id", c.ID.String()).Bool("created", res.Created).Msg("contract billed")
	}

	s.log.Info().
		Str("date", today.Format(model.DateLayout)).
		Int("due", len(due)).
		Int("created", created).
		Int("existing", existing).
		Int("failed", failed).
		Msg("billing pass finished")
	return results, nil
}

// ── BillContract ──────────────────────────────────────────────────────────────
// One unit of work per contract:
//   1. return the existing run for (contract, today) if there is one
//   2. BEGIN TX: reload contract, build document from the template lines,
//      number it, calculate totals, insert SUCCESS run, advance the schedule
//   3. COMMIT; a unique violation on the run means a concurrent pass won,
//      its run is returned
//   4. on any other error a FAILED run occupies the (contract, today) slot
//   5. activity entry, outside the transaction, failures only logged

func (s *billingService) BillContract(ctx context.Context, contractID uuid.UUID, today time.Time) BillingResult {
	today = model.DateOf(today)
	res := BillingResult{ContractID: contractID}

	if run, ok, err := s.existingRun(ctx, contractID, today); err != nil {
		res.Err = err
		return res
	} else if ok {
		res.Run = run
		return res
	}

	var (
		contract *model.Contract
		doc      *model.SalesDocument
		run      *model.ContractRun
	)
	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		c, err := s.contracts.FindForBillingTx(ctx, tx, contractID)
		if err != nil {
			return notFound(err)
		}
		contract = c
		if !c.IsDue(today) {
			return ErrContractNotDue
		}

		d, err := s.buildDocument(ctx, tx, c, today)
		if err != nil {
			return err
		}
		if err := s.documents.CreateTx(ctx, tx, d); err != nil {
			return fmt.Errorf("Beleg speichern: %w", err)
		}
		if _, err := s.calc.RecalculateTx(ctx, tx, d); err != nil {
			return fmt.Errorf("Beleg berechnen: %w", err)
		}

		docID := d.ID
		r := &model.ContractRun{
			ContractID: c.ID,
			RunDate:    today,
			Status:     model.RunStatusSuccess,
			DocumentID: &docID,
		}
		if err := s.runs.CreateTx(ctx, tx, r); err != nil {
			return err
		}
		if err := s.contracts.UpdateScheduleTx(ctx, tx, c.ID, today, c.AdvanceNextRunDate()); err != nil {
			return fmt.Errorf("Vertrag fortschreiben: %w", err)
		}
		doc, run = d, r
		return nil
	})

	switch {
	case err == nil:
		res.Run, res.Created = run, true
		s.logActivity(ctx, contract, &model.Activity{
			Type:  ActivityContractBilled,
			Title: fmt.Sprintf("Vertrag %q abgerechnet", contract.Name),
			Description: fmt.Sprintf("%s %s über %s %s erzeugt, nächste Abrechnung am %s",
				doc.DocumentType, doc.Number, doc.TotalGross.StringFixed(2), doc.Currency,
				contract.AdvanceNextRunDate().Format(model.DateLayout)),
			Severity: model.SeverityInfo,
		})
		return res

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return s.concurrentRun(ctx, res, today, err)

	case errors.Is(err, ErrContractNotDue), errors.Is(err, ErrNotFound):
		if run, ok, lookupErr := s.existingRun(ctx, contractID, today); lookupErr == nil && ok {
			res.Run = run
			return res
		}
		res.Err = err
		return res
	}

	// FAILED run, written outside the rolled back transaction
	failedRun := &model.ContractRun{
		ContractID: contractID,
		RunDate:    today,
		Status:     model.RunStatusFailed,
		Message:    err.Error(),
	}
	if ferr := s.runs.CreateTx(ctx, nil, failedRun); ferr != nil {
		if errors.Is(ferr, gorm.ErrDuplicatedKey) {
			return s.concurrentRun(ctx, res, today, ferr)
		}
		res.Err = fmt.Errorf("%w (FAILED-Lauf nicht gespeichert: %v)", err, ferr)
		return res
	}
	res.Run, res.Created, res.Err = failedRun, true, err

	title := fmt.Sprintf("Abrechnung von Vertrag %s fehlgeschlagen", contractID)
	if contract != nil {
		title = fmt.Sprintf("Abrechnung von Vertrag %q fehlgeschlagen", contract.Name)
	}
	s.logActivity(ctx, contract, &model.Activity{
		Type:        ActivityContractBillingFailed,
		Title:       title,
		Description: err.Error(),
		Severity:    model.SeverityError,
	})
	return res
}

func (s *billingService) existingRun(ctx context.Context, contractID uuid.UUID, day time.Time) (*model.ContractRun, bool, error) {
	run, err := s.runs.FindByContractAndDate(ctx, contractID, day)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return run, true, nil
}

// concurrentRun resolves a unique violation on (contract, run_date) to the run
// that won the race.
func (s *billingService) concurrentRun(ctx context.Context, res BillingResult, today time.Time, cause error) BillingResult {
	run, ok, err := s.existingRun(ctx, res.ContractID, today)
	switch {
	case err != nil:
		res.Err = err
	case !ok:
		res.Err = cause
	default:
		res.Run = run
	}
	return res
}

func (s *billingService) buildDocument(ctx context.Context, tx *gorm.DB, c *model.Contract, today time.Time) (*model.SalesDocument, error) {
	if c.PaymentTerm == nil {
		return nil, fmt.Errorf("Zahlungsbedingung %s nicht gefunden", c.PaymentTermID)
	}
	if len(c.Lines) == 0 {
		return nil, errors.New("Vertrag hat keine Positionen")
	}

	number, err := nextDocumentNumber(ctx, s.documents, tx, c.CompanyID, c.DocumentType, today)
	if err != nil {
		return nil, err
	}

	due := c.PaymentTerm.CalculateDueDate(today)
	contractID, termID := c.ID, c.PaymentTermID
	doc := &model.SalesDocument{
		CompanyID:     c.CompanyID,
		CustomerID:    c.CustomerID,
		DocumentType:  c.DocumentType,
		Number:        number,
		Status:        model.DocumentStatusDraft,
		Subject:       fmt.Sprintf("%s, Abrechnung %s", c.Name, today.Format("01/2006")),
		IssueDate:     today,
		DueDate:       &due,
		PaymentTermID: &termID,
		Currency:      c.Currency,
		ContractID:    &contractID,
		Lines:         make([]model.SalesDocumentLine, 0, len(c.Lines)),
	}
	for _, l := range c.Lines {
		if l.TaxRate == nil {
			return nil, fmt.Errorf("Position %d: Steuersatz %s nicht gefunden", l.PositionNo, l.TaxRateID)
		}
		doc.Lines = append(doc.Lines, CopyContractLine(l, l.TaxRate))
	}
	return doc, nil
}

func (s *billingService) logActivity(ctx context.Context, c *model.Contract, a *model.Activity) {
	if s.activity == nil {
		return
	}
	a.Domain = DomainBilling
	if c != nil {
		companyID := c.CompanyID
		a.CompanyID = &companyID
	}
	if err := s.activity.Log(ctx, a); err != nil {
		s.log.Warn().Err(err).Str("type", a.Type).Msg("activity log failed")
	}
}

func (s *billingService) RunsForDate(ctx context.Context, date time.Time) ([]model.ContractRun, error) {
	return s.runs.ListByDate(ctx, model.DateOf(date))
}
