package handler

import (
	"net/http"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ActivitiesHandler struct{ svc service.ActivityService }

func NewActivitiesHandler(svc service.ActivityService) *ActivitiesHandler {
	return &ActivitiesHandler{svc: svc}
}

// List godoc
// @Summary Aktivitätsprotokoll, neueste zuerst
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param company_id query string false "Mandant"
// @Param domain query string false "BILLING, DOCUMENT oder CONTRACT"
// @Param limit query int false "Anzahl (Standard 50)"
// @Success 200 {array} dto.ActivityResponse
// @Router /v1/activities [get]
func (h *ActivitiesHandler) List(c *gin.Context) {
	var filter dto.ActivityFilter
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
