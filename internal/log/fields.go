package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID     = "request_id"
	FieldCorrelationID = "correlation_id"
	FieldUserID        = "user_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Currency fields
	FieldBaseCurrency   = "base_currency"
	FieldSourceCurrency = "source_currency"
	FieldTargetCurrency = "target_currency"
	FieldAmount         = "amount"
	FieldRate           = "rate"

	// Rate source fields
	FieldProvider = "provider"
	FieldBackend  = "backend"
	FieldCacheKey = "cache_key"

	// Path / URL fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"
)
