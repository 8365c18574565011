package dto

type DashboardResponse struct {
	OfficeName         string               `json:"office_name"`
	TotalMaterialTypes int64                `json:"total_material_types"`
	TotalStock         int64                `json:"total_stock"`
	LatestTransaction  *TransactionResponse `json:"latest_transaction"`
	LowStockThreshold  int                  `json:"low_stock_threshold"`
	LowStock           []MaterialResponse   `json:"low_stock"`
	Search             string               `json:"search"`
	Materials          MaterialListResponse `json:"materials"`
}
