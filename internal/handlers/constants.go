package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgUnauthorized       = "Unauthorized"
	ErrMsgNotFound           = "Not found"
	ErrMsgPermissionDenied   = "Permission denied"
)
