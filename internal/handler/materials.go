package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/myr2601/mintyapp/internal/apierror"
	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/infra"
	"github.com/myr2601/mintyapp/internal/middleware"
	"github.com/myr2601/mintyapp/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MaterialsHandler struct {
	svc            service.MaterialService
	importer       service.ImportService
	maxUploadBytes int64
}

func NewMaterialsHandler(svc service.MaterialService, importer service.ImportService, maxUploadBytes int64) *MaterialsHandler {
	return &MaterialsHandler{svc: svc, importer: importer, maxUploadBytes: maxUploadBytes}
}

func (h *MaterialsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaterialsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetScope(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Tambah material di kantor admin
// @Tags materials
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateMaterialRequest true "Material"
// @Success 201 {object} dto.MaterialResponse
// @Failure 409 {object} apierror.APIError "ID Barang sudah ada"
// @Router /v1/admin/materials [post]
func (h *MaterialsHandler) Create(c *gin.Context) {
	var req dto.CreateMaterialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetScope(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MaterialsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateMaterialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetScope(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaterialsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetScope(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Import godoc
// @Summary Impor material dari file .xlsx
// @Description Kolom wajib: id_barang, nama_material, jumlah, satuan.
// @Tags materials
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook .xlsx"
// @Success 200 {object} dto.ImportResponse
// @Router /v1/admin/materials/import [post]
func (h *MaterialsHandler) Import(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, apierror.New("Ukuran file terlalu besar"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New("Tidak ada file yang dipilih"))
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, apierror.New("Format file tidak valid. Harap unggah file .xlsx"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	sheet, err := infra.ReadSheet(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Gagal membaca file Excel: "+err.Error()))
		return
	}

	resp, err := h.importer.Import(c.Request.Context(), middleware.GetScope(c), sheet)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaterialsHandler) Export(c *gin.Context) {
	data, name, err := h.svc.Export(c.Request.Context(), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
