package handler

import (
	"net/http"

	"github.com/gdsanger/KManager-sub000/internal/apierror"
	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type DocumentsHandler struct{ svc service.DocumentService }

func NewDocumentsHandler(svc service.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{svc: svc}
}

// Create godoc
// @Summary Legt einen Beleg im Entwurf an
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateDocumentRequest true "Belegkopf"
// @Success 201 {object} dto.DocumentResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/documents [post]
func (h *DocumentsHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(requestContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Listet Belege
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param company_id query string false "Mandant"
// @Param customer_id query string false "Kunde"
// @Param contract_id query string false "Vertrag"
// @Param status query string false "DRAFT, ISSUED, PAID, CANCELLED"
// @Param document_type query string false "Belegart"
// @Success 200 {object} dto.DocumentListResponse
// @Router /v1/documents [get]
func (h *DocumentsHandler) List(c *gin.Context) {
	var filter dto.DocumentFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Beleg mit Positionen
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Beleg-ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/documents/{id} [get]
func (h *DocumentsHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddLine godoc
// @Summary Fügt eine Position zu einem Entwurf hinzu
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Beleg-ID"
// @Param body body dto.AddLineRequest true "Position"
// @Success 201 {object} dto.DocumentResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/documents/{id}/lines [post]
func (h *DocumentsHandler) AddLine(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AddLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddLine(requestContext(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RemoveLine godoc
// @Summary Entfernt eine Position aus einem Entwurf
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Beleg-ID"
// @Param line_id path string true "Positions-ID"
// @Success 200 {object} dto.DocumentResponse
// @Router /v1/documents/{id}/lines/{line_id} [delete]
func (h *DocumentsHandler) RemoveLine(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	lineID, ok := paramUUID(c, "line_id")
	if !ok {
		return
	}
	resp, err := h.svc.RemoveLine(requestContext(c), id, lineID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recalculate godoc
// @Summary Berechnet Positions- und Belegsummen neu
// @Description Mit persist=false werden die Summen nur berechnet (Vorschau).
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Beleg-ID"
// @Param persist query bool false "Summen speichern (Standard: true)"
// @Success 200 {object} dto.TotalsResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/documents/{id}/recalculate [post]
func (h *DocumentsHandler) Recalculate(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var (
		resp *dto.TotalsResponse
		err  error
	)
	switch c.DefaultQuery("persist", "true") {
	case "true", "1":
		resp, err = h.svc.Recalculate(requestContext(c), id)
	case "false", "0":
		resp, err = h.svc.Preview(c.Request.Context(), id)
	default:
		c.JSON(http.StatusBadRequest, apierror.BadRequest("persist muss true oder false sein"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Issue godoc
// @Summary Stellt einen Entwurf aus und stößt PDF und Versand an
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Beleg-ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/documents/{id}/issue [post]
func (h *DocumentsHandler) Issue(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Issue(requestContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadPDF godoc
// @Summary Lädt das PDF eines ausgestellten Belegs
// @Tags documents
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Beleg-ID"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/documents/{id}/pdf [get]
func (h *DocumentsHandler) DownloadPDF(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if doc.PDFPath == nil || *doc.PDFPath == "" {
		c.JSON(http.StatusNotFound, apierror.NotFound("PDF noch nicht erzeugt"))
		return
	}
	c.FileAttachment(*doc.PDFPath, doc.Number+".pdf")
}
