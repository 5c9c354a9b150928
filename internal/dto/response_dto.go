package dto

// APIResponse is the success envelope returned by every endpoint.
type APIResponse struct {
	Status  string      `json:"status" example:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the failure envelope. Code is a stable, machine checkable
// discriminator (bad_request, unauthenticated, forbidden, not_found,
// invalid_state, expired, conflict, storage_error).
type ErrorResponse struct {
	Status  string      `json:"status" example:"fail"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details []string    `json:"details,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(message string, data interface{}) APIResponse {
	return APIResponse{Status: "success", Message: message, Data: data}
}
