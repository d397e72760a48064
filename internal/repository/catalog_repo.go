package repository

import (
	"context"

	"github.com/gdsanger/KManager-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ── Items ─────────────────────────────────────────────────────────────────────

type ItemRepository interface {
	Create(ctx context.Context, i *model.Item) error
	// FindByID preloads the item's TaxRate.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	List(ctx context.Context, companyID uuid.UUID) ([]model.Item, error)
	Update(ctx context.Context, i *model.Item) error
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) Create(ctx context.Context, i *model.Item) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(i).Error
}

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var i model.Item
	err := r.db.WithContext(ctx).Preload("TaxRate").Where("id = ?", id).First(&i).Error
	return &i, err
}

func (r *itemRepo) List(ctx context.Context, companyID uuid.UUID) ([]model.Item, error) {
	var items []model.Item
	q := r.db.WithContext(ctx).Order("article_no")
	if companyID != uuid.Nil {
		q = q.Where("company_id = ?", companyID)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *itemRepo) Update(ctx context.Context, i *model.Item) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(i).Error
}

// ── Customers ─────────────────────────────────────────────────────────────────

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, companyID uuid.UUID) ([]model.Customer, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *customerRepo) List(ctx context.Context, companyID uuid.UUID) ([]model.Customer, error) {
	var customers []model.Customer
	q := r.db.WithContext(ctx).Order("name")
	if companyID != uuid.Nil {
		q = q.Where("company_id = ?", companyID)
	}
	err := q.Find(&customers).Error
	return customers, err
}

// ── Companies ─────────────────────────────────────────────────────────────────

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	List(ctx context.Context) ([]model.Company, error)
}

type companyRepo struct{ db *gorm.DB }

func NewCompanyRepository(db *gorm.DB) CompanyRepository { return &companyRepo{db: db} }

func (r *companyRepo) Create(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *companyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *companyRepo) List(ctx context.Context) ([]model.Company, error) {
	var companies []model.Company
	err := r.db.WithContext(ctx).Order("name").Find(&companies).Error
	return companies, err
}

// ── Payment terms ─────────────────────────────────────────────────────────────

type PaymentTermRepository interface {
	Create(ctx context.Context, p *model.PaymentTerm) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentTerm, error)
	List(ctx context.Context, companyID uuid.UUID) ([]model.PaymentTerm, error)
}

type paymentTermRepo struct{ db *gorm.DB }

func NewPaymentTermRepository(db *gorm.DB) PaymentTermRepository { return &paymentTermRepo{db: db} }

func (r *paymentTermRepo) Create(ctx context.Context, p *model.PaymentTerm) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentTermRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentTerm, error) {
	var p model.PaymentTerm
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *paymentTermRepo) List(ctx context.Context, companyID uuid.UUID) ([]model.PaymentTerm, error) {
	var terms []model.PaymentTerm
	q := r.db.WithContext(ctx).Order("net_days, name")
	if companyID != uuid.Nil {
		q = q.Where("company_id = ?", companyID)
	}
	err := q.Find(&terms).Error
	return terms, err
}
