package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FormatDocumentNumber renders "RE-2026-00001".
func FormatDocumentNumber(documentType string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%05d", model.DocumentPrefix(documentType), year, seq)
}

// nextDocumentNumber draws the next number for (company, type, year of issueDate)
// inside tx, so a rolled back document does not consume a number.
func nextDocumentNumber(ctx context.Context, repo repository.DocumentRepository, tx *gorm.DB, companyID uuid.UUID, documentType string, issueDate time.Time) (string, error) {
	if !model.IsDocumentType(documentType) {
		return "", model.NewValidationError("document_type", "Unbekannte Belegart")
	}
	year := issueDate.Year()
	seq, err := repo.NextNumberTx(ctx, tx, companyID, documentType, year)
	if err != nil {
		return "", fmt.Errorf("Belegnummer: %w", err)
	}
	return FormatDocumentNumber(documentType, year, seq), nil
}
