package handler

import (
	"net/http"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the master data: companies, customers, tax rates,
// items and payment terms.
type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ── Companies ────────────────────────────────────────────────────────────────

// CreateCompany godoc
// @Summary Legt einen Mandanten an
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateCompanyRequest true "Mandant"
// @Success 201 {object} dto.CompanyResponse
// @Router /v1/companies [post]
func (h *CatalogHandler) CreateCompany(c *gin.Context) {
	var req dto.CreateCompanyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateCompany(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) ListCompanies(c *gin.Context) {
	resp, err := h.svc.ListCompanies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Customers ────────────────────────────────────────────────────────────────

// CreateCustomer godoc
// @Summary Legt einen Kunden an
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateCustomerRequest true "Kunde"
// @Success 201 {object} dto.CustomerResponse
// @Router /v1/customers [post]
func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) GetCustomer(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	companyID, ok := queryUUID(c, "company_id")
	if !ok {
		return
	}
	resp, err := h.svc.ListCustomers(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CustomerTaxLabel godoc
// @Summary Steuerkennzeichnung eines Kunden
// @Description Liefert z.B. "Reverse Charge (EU B2B)" oder "Export (Nicht-EU)".
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Kunden-ID"
// @Success 200 {object} dto.TaxLabelResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/customers/{id}/tax-label [get]
func (h *CatalogHandler) CustomerTaxLabel(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.CustomerTaxLabel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Tax rates ────────────────────────────────────────────────────────────────

// CreateTaxRate godoc
// @Summary Legt einen Steuersatz an
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateTaxRateRequest true "Steuersatz (rate als Bruch, z.B. 0.19)"
// @Success 201 {object} dto.TaxRateResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/tax-rates [post]
func (h *CatalogHandler) CreateTaxRate(c *gin.Context) {
	var req dto.CreateTaxRateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateTaxRate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) ListTaxRates(c *gin.Context) {
	resp, err := h.svc.ListTaxRates(c.Request.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) DeactivateTaxRate(c *gin.Context) {
	h.setTaxRateActive(c, false)
}

func (h *CatalogHandler) ActivateTaxRate(c *gin.Context) {
	h.setTaxRateActive(c, true)
}

func (h *CatalogHandler) setTaxRateActive(c *gin.Context, active bool) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SetTaxRateActive(c.Request.Context(), id, active); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Items ────────────────────────────────────────────────────────────────────

// CreateItem godoc
// @Summary Legt einen Artikel an
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateItemRequest true "Artikel"
// @Success 201 {object} dto.ItemResponse
// @Router /v1/items [post]
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req dto.CreateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateItem godoc
// @Summary Ändert Artikelstammdaten
// @Description Bestehende Belegpositionen behalten ihre Werte.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Artikel-ID"
// @Param body body dto.UpdateItemRequest true "Änderungen"
// @Success 200 {object} dto.ItemResponse
// @Router /v1/items/{id} [put]
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) ListItems(c *gin.Context) {
	companyID, ok := queryUUID(c, "company_id")
	if !ok {
		return
	}
	resp, err := h.svc.ListItems(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Payment terms ────────────────────────────────────────────────────────────

// CreatePaymentTerm godoc
// @Summary Legt eine Zahlungsbedingung an
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreatePaymentTermRequest true "Zahlungsbedingung"
// @Success 201 {object} dto.PaymentTermResponse
// @Router /v1/payment-terms [post]
func (h *CatalogHandler) CreatePaymentTerm(c *gin.Context) {
	var req dto.CreatePaymentTermRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreatePaymentTerm(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) ListPaymentTerms(c *gin.Context) {
	companyID, ok := queryUUID(c, "company_id")
	if !ok {
		return
	}
	resp, err := h.svc.ListPaymentTerms(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
