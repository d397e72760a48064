package service

import (
	"context"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"
)

// Activity domains and types written by the services.
const (
	DomainBilling  = "BILLING"
	DomainDocument = "DOCUMENT"
	DomainContract = "CONTRACT"

	ActivityContractBilled        = "CONTRACT_BILLED"
	ActivityContractBillingFailed = "CONTRACT_BILLING_FAILED"
	ActivityContractCreated       = "CONTRACT_CREATED"
	ActivityContractStatus        = "CONTRACT_STATUS_CHANGED"
	ActivityDocumentCreated       = "DOCUMENT_CREATED"
	ActivityDocumentIssued        = "DOCUMENT_ISSUED"
)

const systemActor = "system"

type actorKey struct{}

// WithActor attaches the acting user to ctx for activity entries.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(string); ok && a != "" {
		return a
	}
	return systemActor
}

// ActivityLogger is the write side of the activity stream.
type ActivityLogger interface {
	Log(ctx context.Context, a *model.Activity) error
}

type ActivityService interface {
	ActivityLogger
	List(ctx context.Context, filter dto.ActivityFilter) ([]dto.ActivityResponse, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Log(ctx context.Context, a *model.Activity) error {
	if a.Actor == "" {
		a.Actor = actorFrom(ctx)
	}
	if a.Severity == "" {
		a.Severity = model.SeverityInfo
	}
	return s.repo.Create(ctx, a)
}

func (s *activityService) List(ctx context.Context, filter dto.ActivityFilter) ([]dto.ActivityResponse, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityResponse, 0, len(rows))
	for _, a := range rows {
		var company *string
		if a.CompanyID != nil {
			s := a.CompanyID.String()
			company = &s
		}
		out = append(out, dto.ActivityResponse{
			ID:          a.ID.String(),
			CompanyID:   company,
			Domain:      a.Domain,
			Type:        a.Type,
			Title:       a.Title,
			Description: a.Description,
			Actor:       a.Actor,
			Severity:    a.Severity,
			CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}
