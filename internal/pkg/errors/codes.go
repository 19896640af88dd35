package errors

import "net/http"

// Error code constants. Errors carry code + message; the backend always
// logs in English, presentation layers may translate by code.

// Asset error codes.
const (
	CodeAssetNotFound   = "ASSET_NOT_FOUND"
	CodeAssetTagExists  = "ASSET_TAG_EXISTS"
	CodeAssetNotInStock = "ASSET_NOT_IN_STOCK"
)

// Reference entity error codes.
const (
	CodeCategoryNotFound   = "CATEGORY_NOT_FOUND"
	CodeCategoryInUse      = "CATEGORY_IN_USE"
	CodeCategoryNameExists = "CATEGORY_NAME_EXISTS"
	CodeSupplierNotFound   = "SUPPLIER_NOT_FOUND"
	CodeSupplierInUse      = "SUPPLIER_IN_USE"
	CodeSupplierNameExists = "SUPPLIER_NAME_EXISTS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeTaskNotFound       = "MAINTENANCE_TASK_NOT_FOUND"
)

// Validation error codes.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeAssignmentMismatch = "ASSIGNMENT_STATUS_MISMATCH"
	CodeEmptySelection     = "EMPTY_SELECTION"
	CodeImageTooLarge      = "IMAGE_TOO_LARGE"
	CodeImageBadFormat     = "IMAGE_UNSUPPORTED_FORMAT"
	CodeImageUndecodable   = "IMAGE_UNDECODABLE"
)

// Auth/transport error codes.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeTokenExpired = "TOKEN_EXPIRED"
)

// Generic error codes.
const (
	CodeInternal       = "INTERNAL_ERROR"
	CodeInvalidRequest = "INVALID_REQUEST"
)

// Convenience constructors using predefined codes.

// ErrAssetNotFoundf creates an asset not found error.
func ErrAssetNotFoundf(assetID string) *AppError {
	return &AppError{
		Code:       CodeAssetNotFound,
		Message:    "asset " + assetID + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ErrAssetTagExistsf creates a duplicate asset tag error.
func ErrAssetTagExistsf(tag string) *AppError {
	return &AppError{
		Code:       CodeAssetTagExists,
		Message:    "an asset with tag " + tag + " already exists",
		HTTPStatus: http.StatusConflict,
	}
}

// ErrAssignmentMismatchf creates the status/assignment coupling violation error.
func ErrAssignmentMismatchf() *AppError {
	return &AppError{
		Code:       CodeAssignmentMismatch,
		Message:    "status Assigned requires an assigned user, and vice versa",
		HTTPStatus: http.StatusBadRequest,
	}
}
