package dto

type CreateMaterialRequest struct {
	ExternalCode string `json:"id_barang"     validate:"required,max=50"`
	Name         string `json:"nama_material" validate:"required,max=200"`
	Quantity     int    `json:"jumlah"        validate:"gte=0"`
	UnitID       string `json:"satuan_id"     validate:"required,uuid"`
}

type UpdateMaterialRequest struct {
	Name     string `json:"nama_material" validate:"required,max=200"`
	Quantity *int   `json:"jumlah"        validate:"omitempty,gte=0"`
	UnitID   string `json:"satuan_id"     validate:"required,uuid"`
}

type MaterialResponse struct {
	ID           string `json:"id"`
	ExternalCode string `json:"id_barang"`
	Name         string `json:"nama_material"`
	Quantity     int    `json:"jumlah"`
	UnitID       string `json:"satuan_id"`
	UnitName     string `json:"satuan"`
	OfficeID     string `json:"office_id"`
}

type MaterialFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type MaterialListResponse struct {
	Data       []MaterialResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type ImportResponse struct {
	Created  int      `json:"created"`
	Merged   int      `json:"merged"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings"`
}
