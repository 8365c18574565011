package handler

import (
	"net/http"

	"github.com/myr2601/mintyapp/internal/apierror"
	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/middleware"
	"github.com/myr2601/mintyapp/internal/service"

	"github.com/gin-gonic/gin"
)

type TransactionsHandler struct{ svc service.TransactionService }

func NewTransactionsHandler(svc service.TransactionService) *TransactionsHandler {
	return &TransactionsHandler{svc: svc}
}

// Process godoc
// @Summary Catat barang masuk (IN) atau keluar (OUT)
// @Tags transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.TransactionRequest true "Batch transaksi"
// @Success 201 {object} dto.BatchResponse
// @Failure 409 {object} apierror.APIError "Stok tidak cukup"
// @Router /v1/transactions [post]
func (h *TransactionsHandler) Process(c *gin.Context) {
	var req dto.TransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Process(c.Request.Context(), middleware.GetScope(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TransactionsHandler) Materials(c *gin.Context) {
	resp, err := h.svc.AvailableMaterials(c.Request.Context(), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary Riwayat transaksi kantor, terbaru dulu
// @Tags transactions
// @Security BearerAuth
// @Produce json
// @Param page query int false "Halaman"
// @Param limit query int false "Jumlah per halaman"
// @Success 200 {object} dto.HistoryResponse
// @Router /v1/transactions [get]
func (h *TransactionsHandler) History(c *gin.Context) {
	var filter dto.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.History(c.Request.Context(), middleware.GetScope(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransactionsHandler) Clear(c *gin.Context) {
	resp, err := h.svc.ClearHistory(c.Request.Context(), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
