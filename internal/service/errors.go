package service

import (
	"errors"

	"github.com/gdsanger/KManager-sub000/internal/model"

	"gorm.io/gorm"
)

// Sentinel errors of the service layer. Handlers map them to HTTP status codes;
// messages are user-facing.
var (
	ErrNotFound           = errors.New("Datensatz nicht gefunden")
	ErrValidation         = model.ErrValidation
	ErrZeroTaxRateMissing = errors.New("kein aktiver 0%-Steuersatz konfiguriert")
	ErrContractInactive   = errors.New("Vertrag ist nicht aktiv")
	ErrDocumentLocked     = errors.New("Beleg ist nicht mehr im Entwurf und kann nicht geändert werden")
	ErrDuplicate          = errors.New("Datensatz existiert bereits")
)

// notFound maps gorm.ErrRecordNotFound to ErrNotFound and passes anything else through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// duplicate maps gorm.ErrDuplicatedKey to ErrDuplicate.
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
