package handler

import (
	"net/http"

	"github.com/myr2601/mintyapp/internal/apierror"
	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/middleware"
	"github.com/myr2601/mintyapp/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Summary godoc
// @Summary Ringkasan stok kantor
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Param search query string false "Cari nama atau ID barang"
// @Param page query int false "Halaman"
// @Success 200 {object} dto.DashboardResponse
// @Router /v1/dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	var filter dto.MaterialFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Summary(c.Request.Context(), middleware.GetScope(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
