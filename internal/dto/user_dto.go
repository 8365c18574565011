package dto

type CreateUserRequest struct {
	Username string `json:"username"  validate:"required,max=80"`
	Password string `json:"password"  validate:"required,min=4"`
	Role     string `json:"role"      validate:"required,oneof=admin user"`
	OfficeID string `json:"office_id" validate:"required,uuid"`
}

// UpdateUserRequest changes only the fields that are present.
type UpdateUserRequest struct {
	Password string `json:"password"  validate:"omitempty,min=4"`
	Role     string `json:"role"      validate:"omitempty,oneof=admin user"`
	OfficeID string `json:"office_id" validate:"omitempty,uuid"`
}

type UserResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	OfficeID   string `json:"office_id"`
	OfficeName string `json:"office_name"`
}

type PermissionsRequest struct {
	MaterialIDs []string `json:"material_ids"`
}

// PermissionsResponse lists the materials of the user's office and which of
// them the user may transact on.
type PermissionsResponse struct {
	UserID       string             `json:"user_id"`
	Username     string             `json:"username"`
	Materials    []MaterialResponse `json:"materials"`
	PermittedIDs []string           `json:"permitted_ids"`
}
