package dto

// SetActiveRequest activates or deactivates a lookup row
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required" example:"false"`
}

// LookupListQuery selects the rows of a lookup table on the admin screens
type LookupListQuery struct {
	All bool `form:"all" example:"true"`
}
