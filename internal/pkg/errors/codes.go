package errors

import "net/http"

const (
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeConflict           = "CONFLICT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeTransient          = "TRANSIENT"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
)

var (
	ErrPlanNotFound = New(
		CodeNotFound,
		"Plan not found",
		http.StatusNotFound,
	)

	ErrDestinationNotFound = New(
		CodeNotFound,
		"Destination not found",
		http.StatusNotFound,
	)

	ErrPlanItemNotFound = New(
		CodeNotFound,
		"Plan item not found",
		http.StatusNotFound,
	)

	ErrClusterNotFound = New(
		CodeNotFound,
		"Cluster not found",
		http.StatusNotFound,
	)

	ErrPreferenceNotFound = New(
		CodeNotFound,
		"User preference not found",
		http.StatusNotFound,
	)

	ErrEmbeddingNotFound = New(
		CodeNotFound,
		"User embedding not found",
		http.StatusNotFound,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"X-User-ID header is required",
		http.StatusUnauthorized,
	)

	ErrNotSelf = New(
		CodeForbidden,
		"Users may only access their own data",
		http.StatusForbidden,
	)

	ErrNotPlanMember = New(
		CodeForbidden,
		"User is not a member of this plan",
		http.StatusForbidden,
	)

	ErrViewerCannotEdit = New(
		CodeForbidden,
		"Viewers cannot edit the plan",
		http.StatusForbidden,
	)

	ErrOwnerOnly = New(
		CodeForbidden,
		"Only the plan owner can perform this action",
		http.StatusForbidden,
	)

	ErrInvalidDateRange = New(
		CodeInvalidInput,
		"Start date must not be after end date",
		http.StatusBadRequest,
	)

	ErrDateOutOfRange = New(
		CodeInvalidInput,
		"Visit date is outside the plan date range",
		http.StatusBadRequest,
	)

	ErrNegativeBudget = New(
		CodeInvalidInput,
		"Budget must not be negative",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		CodeInvalidInput,
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrDimensionMismatch = New(
		CodeInvalidInput,
		"Vector dimension mismatch",
		http.StatusBadRequest,
	)

	ErrInvalidDuration = New(
		CodeInvalidInput,
		"Unsupported duration format",
		http.StatusBadRequest,
	)

	ErrDuplicateOrder = New(
		CodeConflict,
		"Duplicate order in day",
		http.StatusConflict,
	)

	ErrAttractionClone = New(
		CodeConflict,
		"Attractions cannot be repeated",
		http.StatusConflict,
	)

	ErrAlreadyExists = New(
		CodeConflict,
		"Resource already exists",
		http.StatusConflict,
	)

	ErrServiceUnavailable = New(
		CodeServiceUnavailable,
		"Service dependencies are unavailable",
		http.StatusServiceUnavailable,
	)

	ErrIndexNotBuilt = New(
		CodeServiceUnavailable,
		"Vector index is not built",
		http.StatusServiceUnavailable,
	)

	ErrEncoderUnavailable = New(
		CodeServiceUnavailable,
		"Embedding model is unavailable",
		http.StatusServiceUnavailable,
	)

	ErrGeneratorUnavailable = New(
		CodeServiceUnavailable,
		"Text generator is unavailable",
		http.StatusServiceUnavailable,
	)

	ErrUpstreamTimeout = New(
		CodeTransient,
		"Upstream service timed out",
		http.StatusGatewayTimeout,
	)

	ErrPlaceResolver = New(
		CodeTransient,
		"Place resolver request failed",
		http.StatusBadGateway,
	)

	ErrDatabaseError = New(
		CodeInternal,
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		CodeInternal,
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		CodeInternal,
		"Internal server error",
		http.StatusInternalServerError,
	)
)
