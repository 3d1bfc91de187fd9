package dto

// APIResponse represents the standard API response structure
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail represents error details in API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}

// SideEffect reports the outcome of a non-critical step that ran after the primary write.
// A failed side effect never fails the operation that produced it.
type SideEffect struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Side effect names
const (
	SideEffectExposure = "exposure"
	SideEffectReward   = "reward"
	SideEffectAudit    = "audit"
)
