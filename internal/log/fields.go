package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldBoard      = "board"
	FieldEntity     = "entity"
	FieldRecordID   = "record_id"
	FieldRule       = "rule"
	FieldTarget     = "target_entity"
	FieldCount      = "count"
	FieldRange      = "range"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentBoard      = "board"
	ComponentAutomation = "automation"
	ComponentFinance    = "finance"
	ComponentStorage    = "storage"
	ComponentViewState  = "viewstate"
	ComponentAMQP       = "amqp"
	ComponentExports    = "exports"
	ComponentCache      = "cache"
	ComponentRateLimit  = "rate_limit"
	ComponentTrace      = "trace"
)

// Operations defines standard operation names
const (
	OpCreate = "create"
	OpDelete = "delete"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the entity and record id of the row being touched.
func (f LogFields) WithRecord(entity, id string) LogFields {
	f[FieldEntity] = entity
	if id != "" {
		f[FieldRecordID] = id
	}
	return f
}

// WithRule adds the automation rule name and the collection it writes to.
func (f LogFields) WithRule(rule, target string) LogFields {
	f[FieldRule] = rule
	f[FieldTarget] = target
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
