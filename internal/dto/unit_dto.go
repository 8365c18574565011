package dto

type UnitRequest struct {
	Name string `json:"name" validate:"required,max=10"`
}

type UnitResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
