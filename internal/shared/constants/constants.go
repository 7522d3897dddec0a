package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Sort orders accepted by list endpoints
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXSocketID     = "X-Socket-ID"

	ContentTypeJSON      = "application/json"
	ContentTypeMultipart = "multipart/form-data"

	// Context keys
	ContextKeyRequestID = "request_id"

	// Database table names
	TableUsers    = "users"
	TableTickets  = "tickets"
	TableMessages = "messages"

	ErrMsgInternalServerError = "Internal server error occurred"
)
