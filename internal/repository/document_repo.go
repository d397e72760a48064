package repository

import (
	"context"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository interface {
	// CreateTx inserts the document and its Lines.
	CreateTx(ctx context.Context, tx *gorm.DB, d *model.SalesDocument) error
	// FindByID preloads Lines (by position), Customer, CompanyRef and PaymentTerm.
	FindByID(ctx context.Context, id uuid.UUID) (*model.SalesDocument, error)
	List(ctx context.Context, filter dto.DocumentFilter) ([]model.SalesDocument, int64, error)

	AddLineTx(ctx context.Context, tx *gorm.DB, line *model.SalesDocumentLine) error
	DeleteLineTx(ctx context.Context, tx *gorm.DB, documentID, lineID uuid.UUID) error

	// SaveCalculationTx writes the computed line amounts and document totals.
	SaveCalculationTx(ctx context.Context, tx *gorm.DB, d *model.SalesDocument) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error
	SetPDFPath(ctx context.Context, id uuid.UUID, path string) error

	// NextNumberTx increments the (company, type, year) counter inside tx and
	// returns the new value, starting at 1.
	NextNumberTx(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, documentType string, year int) (int, error)

	DB() *gorm.DB
}

type documentRepo struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) DocumentRepository { return &documentRepo{db: db} }

func (r *documentRepo) DB() *gorm.DB { return r.db }

func (r *documentRepo) CreateTx(ctx context.Context, tx *gorm.DB, d *model.SalesDocument) error {
	q := conn(ctx, r.db, tx)
	lines := d.Lines
	if err := q.Omit(clause.Associations).Create(d).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].DocumentID = d.ID
	}
	if len(lines) > 0 {
		if err := q.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
	}
	d.Lines = lines
	return nil
}

func (r *documentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SalesDocument, error) {
	var d model.SalesDocument
	err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Preload("Customer").
		Preload("CompanyRef").
		Preload("PaymentTerm").
		Where("id = ?", id).
		First(&d).Error
	return &d, err
}

func (r *documentRepo) List(ctx context.Context, filter dto.DocumentFilter) ([]model.SalesDocument, int64, error) {
	var docs []model.SalesDocument
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SalesDocument{})
	if filter.CompanyID != "" {
		q = q.Where("company_id = ?", filter.CompanyID)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.ContractID != "" {
		q = q.Where("contract_id = ?", filter.ContractID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.DocumentType != "" {
		q = q.Where("document_type = ?", filter.DocumentType)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := paginate(q, filter.Page, filter.Limit).
		Preload("Lines", orderedLines).
		Order("issue_date DESC, number DESC").
		Find(&docs).Error
	return docs, total, err
}

func (r *documentRepo) AddLineTx(ctx context.Context, tx *gorm.DB, line *model.SalesDocumentLine) error {
	return conn(ctx, r.db, tx).Omit(clause.Associations).Create(line).Error
}

func (r *documentRepo) DeleteLineTx(ctx context.Context, tx *gorm.DB, documentID, lineID uuid.UUID) error {
	res := conn(ctx, r.db, tx).
		Where("id = ? AND document_id = ?", lineID, documentID).
		Delete(&model.SalesDocumentLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *documentRepo) SaveCalculationTx(ctx context.Context, tx *gorm.DB, d *model.SalesDocument) error {
	q := conn(ctx, r.db, tx)
	for _, l := range d.Lines {
		err := q.Model(&model.SalesDocumentLine{}).Where("id = ?", l.ID).Updates(map[string]interface{}{
			"line_net":   l.LineNet,
			"line_tax":   l.LineTax,
			"line_gross": l.LineGross,
		}).Error
		if err != nil {
			return err
		}
	}
	return q.Model(&model.SalesDocument{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
		"total_net":   d.TotalNet,
		"total_tax":   d.TotalTax,
		"total_gross": d.TotalGross,
	}).Error
}

// UpdateStatus only transitions documents currently in status from.
func (r *documentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	res := r.db.WithContext(ctx).Model(&model.SalesDocument{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *documentRepo) SetPDFPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.SalesDocument{}).Where("id = ?", id).Update("pdf_path", path).Error
}

func (r *documentRepo) NextNumberTx(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, documentType string, year int) (int, error) {
	q := conn(ctx, r.db, tx)
	seed := model.DocumentCounter{CompanyID: companyID, DocumentType: documentType, Year: year, Value: 0}
	if err := q.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, err
	}
	// the UPDATE takes the row lock, concurrent writers queue here
	key := "company_id = ? AND document_type = ? AND year = ?"
	if err := q.Model(&model.DocumentCounter{}).Where(key, companyID, documentType, year).
		Update("value", gorm.Expr("value + 1")).Error; err != nil {
		return 0, err
	}
	var counter model.DocumentCounter
	if err := q.Where(key, companyID, documentType, year).First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}
