package errors

// Error code constants, format CATEGORY_SPECIFIC_DETAIL.
// The storefront and admin console map their messages from these codes.

const (
	// ==================== AUTH_ ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong username/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED" // logged out

	// ==================== AUTHZ_ ====================
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"

	// ==================== VALIDATION_ ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"

	// ==================== RESOURCE_ ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// ==================== CATALOG_ ====================
	CatalogProductNotFound = "CATALOG_PRODUCT_NOT_FOUND"
	CatalogDuplicateSlug   = "CATALOG_DUPLICATE_SLUG"

	// ==================== CART_ / ORDER_ ====================
	CartInvalidQuantity      = "CART_INVALID_QUANTITY"
	OrderEmptyCart           = "ORDER_EMPTY_CART"
	OrderProductsUnavailable = "ORDER_PRODUCTS_UNAVAILABLE"
	OrderNotFound            = "ORDER_NOT_FOUND"

	// ==================== UPLOAD_ ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadTooManyFiles    = "UPLOAD_TOO_MANY_FILES"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== RATE_ ====================
	RateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	// ==================== INTERNAL_ ====================
	InternalServerError      = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError    = "INTERNAL_DATABASE_ERROR"
	InternalStoreUnavailable = "INTERNAL_STORE_UNAVAILABLE" // primary and fallback both failed
	InternalExternalAPI      = "INTERNAL_EXTERNAL_API"
)
