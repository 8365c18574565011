package dto

import "time"

// TransactionLine is one (material, quantity) pair of a batch. Lines with an
// empty material id or a non-positive quantity are ignored.
type TransactionLine struct {
	MaterialID string `json:"material_id"`
	Quantity   int    `json:"jumlah"`
}

type TransactionRequest struct {
	Kind string `json:"tipe_transaksi" validate:"required,oneof=IN OUT"`
	// Source is the supplier / origin of an IN batch.
	Source string `json:"sumber" validate:"max=100"`
	// Method and Destination describe an OUT batch, e.g. "online" / "Tokopedia".
	Method      string            `json:"metode"  validate:"max=40"`
	Destination string            `json:"tujuan"  validate:"max=55"`
	Lines       []TransactionLine `json:"items"   validate:"required,min=1"`
}

type TransactionResponse struct {
	ID           string    `json:"id"`
	MaterialID   string    `json:"material_id"`
	MaterialCode string    `json:"id_barang"`
	MaterialName string    `json:"nama_material"`
	UnitName     string    `json:"satuan"`
	Kind         string    `json:"tipe_transaksi"`
	Quantity     int       `json:"jumlah"`
	Source       string    `json:"sumber"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Timestamp    time.Time `json:"timestamp"`
}

type BatchResponse struct {
	Kind      string                `json:"tipe_transaksi"`
	Processed int                   `json:"processed"`
	Skipped   int                   `json:"skipped"`
	Entries   []TransactionResponse `json:"entries"`
}

type HistoryFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type HistoryResponse struct {
	Data  []TransactionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

type ClearHistoryResponse struct {
	Deleted int64 `json:"deleted"`
}
