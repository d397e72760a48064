package service

import (
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"gorm.io/gorm"
)

// RegistryConfig carries the settings the services need from config.
type RegistryConfig struct {
	CompanyCountry  string
	ZeroTaxRateCode string
	// Dispatcher may be nil; issued documents are then not delivered.
	Dispatcher DocumentJobDispatcher
}

// Registry is the wired service graph shared by the HTTP server and the CLI.
// Dependency graph: Service ← Repository ← DB
type Registry struct {
	Catalog     CatalogService
	Contracts   ContractService
	Documents   DocumentService
	Billing     BillingService
	Activity    ActivityService
	Calculation CalculationService
	Tax         TaxService

	DocumentRepo repository.DocumentRepository
	CustomerRepo repository.CustomerRepository
}

func NewRegistry(db *gorm.DB, cfg RegistryConfig) *Registry {
	// ── Repositories ─────────────────────────────────────────────────────────
	companyRepo := repository.NewCompanyRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	taxRateRepo := repository.NewTaxRateRepository(db)
	itemRepo := repository.NewItemRepository(db)
	termRepo := repository.NewPaymentTermRepository(db)
	contractRepo := repository.NewContractRepository(db)
	runRepo := repository.NewContractRunRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	taxSvc := NewTaxService(NewZeroRateProvider(taxRateRepo, cfg.ZeroTaxRateCode), cfg.CompanyCountry)
	activitySvc := NewActivityService(activityRepo)
	calcSvc := NewCalculationService(documentRepo)

	return &Registry{
		Catalog:     NewCatalogService(companyRepo, customerRepo, taxRateRepo, itemRepo, termRepo, taxSvc),
		Contracts:   NewContractService(contractRepo, runRepo, companyRepo, customerRepo, termRepo, itemRepo, taxRateRepo, taxSvc, activitySvc),
		Documents:   NewDocumentService(documentRepo, customerRepo, termRepo, itemRepo, taxRateRepo, taxSvc, calcSvc, activitySvc, cfg.Dispatcher),
		Billing:     NewBillingService(contractRepo, runRepo, documentRepo, calcSvc, activitySvc),
		Activity:    activitySvc,
		Calculation: calcSvc,
		Tax:         taxSvc,

		DocumentRepo: documentRepo,
		CustomerRepo: customerRepo,
	}
}
