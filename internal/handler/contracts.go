package handler

import (
	"net/http"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ContractsHandler struct{ svc service.ContractService }

func NewContractsHandler(svc service.ContractService) *ContractsHandler {
	return &ContractsHandler{svc: svc}
}

// Create godoc
// @Summary Legt einen Abrechnungsvertrag mit Positionen an
// @Tags contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateContractRequest true "Vertrag"
// @Success 201 {object} dto.ContractResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/contracts [post]
func (h *ContractsHandler) Create(c *gin.Context) {
	var req dto.CreateContractRequest
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
// @Summary Listet Verträge
// @Tags contracts
// @Produce json
// @Security BearerAuth
// @Param company_id query string false "Mandant"
// @Param customer_id query string false "Kunde"
// @Param status query string false "active, inactive oder all"
// @Param page query int false "Seite"
// @Param limit query int false "Einträge pro Seite"
// @Success 200 {object} dto.ContractListResponse
// @Router /v1/contracts [get]
func (h *ContractsHandler) List(c *gin.Context) {
	var filter dto.ContractFilter
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
// @Summary Vertrag mit Positionen
// @Tags contracts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vertrags-ID"
// @Success 200 {object} dto.ContractResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/contracts/{id} [get]
func (h *ContractsHandler) Get(c *gin.Context) {
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

// Deactivate godoc
// @Summary Deaktiviert einen Vertrag
// @Tags contracts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vertrags-ID"
// @Success 200 {object} dto.ContractResponse
// @Router /v1/contracts/{id}/deactivate [patch]
func (h *ContractsHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// Activate godoc
// @Summary Reaktiviert einen Vertrag
// @Tags contracts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vertrags-ID"
// @Success 200 {object} dto.ContractResponse
// @Router /v1/contracts/{id}/activate [patch]
func (h *ContractsHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *ContractsHandler) setActive(c *gin.Context, active bool) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.SetActive(requestContext(c), id, active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Runs godoc
// @Summary Abrechnungsläufe eines Vertrags
// @Tags contracts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vertrags-ID"
// @Success 200 {array} dto.ContractRunResponse
// @Router /v1/contracts/{id}/runs [get]
func (h *ContractsHandler) Runs(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Runs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
