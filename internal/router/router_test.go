package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/config"
	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/infra"
	"github.com/gdsanger/KManager-sub000/internal/middleware"
	"github.com/gdsanger/KManager-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := infra.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{JWTSecret: testSecret, Env: "test", CompanyCountry: "DE", ZeroTaxRateCode: "ZERO"}
	reg := service.NewRegistry(db, service.RegistryConfig{CompanyCountry: cfg.CompanyCountry, ZeroTaxRateCode: cfg.ZeroTaxRateCode})
	return New(cfg, db, nil, nil, reg)
}

func signToken(t *testing.T, subject, role string, dur time.Duration) string {
	t.Helper()
	claims := middleware.JWTClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(dur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func doRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

// ── Tests: public / auth ──────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	assert.Equal(t, "disabled", body["mail"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestAuth(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/v1/companies", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired := signToken(t, "leser@example.de", middleware.RoleViewer, -time.Minute)
	w = doRequest(r, http.MethodGet, "/v1/companies", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	noSubject := signToken(t, "", middleware.RoleAdmin, time.Hour)
	w = doRequest(r, http.MethodGet, "/v1/companies", noSubject, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	viewer := signToken(t, "leser@example.de", middleware.RoleViewer, time.Hour)
	w = doRequest(r, http.MethodGet, "/v1/companies", viewer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPost, "/v1/companies", viewer, dto.CreateCompanyRequest{Name: "X GmbH", CountryCode: "DE"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	accounting := signToken(t, "buchhaltung@example.de", middleware.RoleAccounting, time.Hour)
	w = doRequest(r, http.MethodPost, "/v1/billing/run", viewer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doRequest(r, http.MethodPost, "/v1/billing/run", accounting, dto.RunBillingRequest{Date: "2026-01-01"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidationAndErrorMapping(t *testing.T) {
	r := newTestRouter(t)
	admin := signToken(t, "admin@example.de", middleware.RoleAdmin, time.Hour)

	w := doRequest(r, http.MethodPost, "/v1/companies", admin, dto.CreateCompanyRequest{Name: "X", CountryCode: "DEU"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doRequest(r, http.MethodGet, "/v1/documents/"+uuid.NewString(), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/v1/documents/kein-uuid", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/v1/billing/run", admin, dto.RunBillingRequest{Date: "01.01.2026"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ── Tests: billing flow ───────────────────────────────────────────────────────

func TestBillingFlow(t *testing.T) {
	r := newTestRouter(t)
	admin := signToken(t, "admin@example.de", middleware.RoleAdmin, time.Hour)
	accounting := signToken(t, "buchhaltung@example.de", middleware.RoleAccounting, time.Hour)

	var company dto.CompanyResponse
	w := doRequest(r, http.MethodPost, "/v1/companies", admin, dto.CreateCompanyRequest{Name: "Muster GmbH", CountryCode: "DE"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &company)

	var standard dto.TaxRateResponse
	w = doRequest(r, http.MethodPost, "/v1/tax-rates", admin, map[string]interface{}{"code": "STANDARD", "name": "19 %", "rate": "0.19"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &standard)
	w = doRequest(r, http.MethodPost, "/v1/tax-rates", admin, map[string]interface{}{"code": "ZERO", "name": "0 %", "rate": "0"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var term dto.PaymentTermResponse
	w = doRequest(r, http.MethodPost, "/v1/payment-terms", admin, dto.CreatePaymentTermRequest{CompanyID: company.ID, Name: "14 Tage netto", NetDays: 14})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &term)

	var customer dto.CustomerResponse
	w = doRequest(r, http.MethodPost, "/v1/customers", accounting, dto.CreateCustomerRequest{CompanyID: company.ID, Name: "Kunde Berlin", CountryCode: "DE"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &customer)

	var label dto.TaxLabelResponse
	w = doRequest(r, http.MethodGet, "/v1/customers/"+customer.ID+"/tax-label", accounting, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &label)
	assert.Equal(t, "Standard (DE)", label.Label)

	var contract dto.ContractResponse
	w = doRequest(r, http.MethodPost, "/v1/contracts", accounting, map[string]interface{}{
		"company_id":      company.ID,
		"customer_id":     customer.ID,
		"name":            "Wartungsvertrag",
		"document_type":   "INVOICE",
		"payment_term_id": term.ID,
		"interval":        "MONTHLY",
		"start_date":      "2026-01-01",
		"lines": []map[string]interface{}{{
			"position_no":    1,
			"description":    "Wartungspauschale",
			"quantity":       "1",
			"unit_price_net": "1000.00",
			"tax_rate_id":    standard.ID,
		}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &contract)

	var run dto.BillingRunResponse
	w = doRequest(r, http.MethodPost, "/v1/billing/run", accounting, dto.RunBillingRequest{Date: "2026-01-01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &run)
	assert.Equal(t, "2026-01-01", run.Date)
	assert.Equal(t, 1, run.Created)
	assert.Equal(t, 0, run.Failed)
	require.Len(t, run.Results, 1)
	require.NotNil(t, run.Results[0].Run)
	require.NotNil(t, run.Results[0].Run.DocumentID)
	docID := *run.Results[0].Run.DocumentID

	// same date again: nothing new, the earlier run is reported
	var rerun dto.BillingRunResponse
	w = doRequest(r, http.MethodPost, "/v1/billing/run", accounting, dto.RunBillingRequest{Date: "2026-01-01"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &rerun)
	assert.Equal(t, 0, rerun.Created)
	assert.Equal(t, 1, rerun.Existing)
	require.Len(t, rerun.Results, 1)
	require.NotNil(t, rerun.Results[0].Run)
	assert.Equal(t, run.Results[0].Run.ID, rerun.Results[0].Run.ID)

	var runs []dto.ContractRunResponse
	w = doRequest(r, http.MethodGet, "/v1/billing/runs?date=2026-01-01", accounting, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &runs)
	assert.Len(t, runs, 1)

	var doc dto.DocumentResponse
	w = doRequest(r, http.MethodGet, "/v1/documents/"+docID, accounting, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &doc)
	assert.Equal(t, "RE-2026-00001", doc.Number)
	assert.Equal(t, "1190.00", doc.TotalGross.StringFixed(2))
	require.NotNil(t, doc.DueDate)
	assert.Equal(t, "2026-01-15", *doc.DueDate)

	var totals dto.TotalsResponse
	w = doRequest(r, http.MethodPost, "/v1/documents/"+docID+"/recalculate?persist=false", accounting, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &totals)
	assert.False(t, totals.Persisted)
	assert.Equal(t, "190.00", totals.TotalTax.StringFixed(2))

	w = doRequest(r, http.MethodPost, "/v1/documents/"+docID+"/recalculate?persist=vielleicht", accounting, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/v1/documents/"+docID+"/issue", accounting, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doRequest(r, http.MethodPost, "/v1/documents/"+docID+"/recalculate", accounting, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(r, http.MethodGet, "/v1/documents/"+docID+"/pdf", accounting, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var activities []dto.ActivityResponse
	w = doRequest(r, http.MethodGet, "/v1/activities?domain=BILLING", accounting, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &activities)
	require.NotEmpty(t, activities)
	assert.Equal(t, "CONTRACT_BILLED", activities[0].Type)
	assert.Equal(t, "buchhaltung@example.de", activities[0].Actor)
}
