package constants

// Pagination bounds. Page indexes are zero-based; sizes above MaxPageSize are
// clamped, not rejected.
const (
	DefaultPage     = 0
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Context keys used to pass the authenticated caller through gin.
const (
	ContextKeyHouseholdID = "household_id"
	ContextKeyUserID      = "user_id"
)

// Headers injected by the upstream gateway after token validation.
const (
	HeaderHouseholdID = "X-Household-ID"
	HeaderUserID      = "X-User-ID"
)

// Field length limits shared by validation and the schema.
const (
	MaxTitleLength               = 255
	MaxTaskDescriptionLength     = 1000
	MaxCategoryNameLength        = 100
	MaxCategoryDescriptionLength = 500
	MaxCategoryIconLength        = 50
)

// MaxSuggestedTasks caps how many tasks a single suggestion request may produce.
const MaxSuggestedTasks = 10
