package handler

import (
	"net/http"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	svc service.BillingService
	now func() time.Time
}

func NewBillingHandler(svc service.BillingService) *BillingHandler {
	return &BillingHandler{svc: svc, now: time.Now}
}

// Run godoc
// @Summary Startet den Abrechnungslauf für ein Datum
// @Description Erzeugt Belege für alle fälligen Verträge. Mehrfache Aufrufe für dasselbe Datum erzeugen keine weiteren Läufe.
// @Tags billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RunBillingRequest false "Stichtag (Standard: heute)"
// @Success 200 {object} dto.BillingRunResponse
// @Router /v1/billing/run [post]
func (h *BillingHandler) Run(c *gin.Context) {
	var req dto.RunBillingRequest
	if c.Request.ContentLength != 0 {
		if !bindAndValidate(c, &req) {
			return
		}
	}
	day := h.day(req.Date)

	results, err := h.svc.GenerateDue(requestContext(c), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillingRunResponse(day, results))
}

// Runs godoc
// @Summary Abrechnungsläufe eines Stichtags
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD (Standard: heute)"
// @Success 200 {array} dto.ContractRunResponse
// @Router /v1/billing/runs [get]
func (h *BillingHandler) Runs(c *gin.Context) {
	var filter dto.BillingRunsFilter
	if !bindQuery(c, &filter) {
		return
	}
	runs, err := h.svc.RunsForDate(c.Request.Context(), h.day(filter.Date))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.ContractRunResponse, len(runs))
	for i := range runs {
		out[i] = service.ToContractRunResponse(&runs[i])
	}
	c.JSON(http.StatusOK, out)
}

// day resolves an already validated date string; empty means today.
func (h *BillingHandler) day(raw string) time.Time {
	if raw == "" {
		return model.DateOf(h.now())
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.DateOf(h.now())
	}
	return d
}

func toBillingRunResponse(day time.Time, results []service.BillingResult) dto.BillingRunResponse {
	resp := dto.BillingRunResponse{
		Date:    day.Format(model.DateLayout),
		Results: make([]dto.BillingResultItem, 0, len(results)),
	}
	for _, r := range results {
		item := dto.BillingResultItem{ContractID: r.ContractID.String(), Created: r.Created}
		if r.Run != nil {
			run := service.ToContractRunResponse(r.Run)
			item.Run = &run
		}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		switch {
		case r.Err != nil:
			resp.Failed++
		case r.Created:
			resp.Created++
		default:
			resp.Existing++
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}
