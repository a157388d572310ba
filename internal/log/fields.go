package log

// Attribute keys shared by every component.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
)

// Request attributes, set by the trace middleware.
const (
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldUserAgent     = "user_agent"
	FieldReferer       = "referer"
	FieldSuccess       = "success"
)

// Dataset attributes.
const (
	FieldSource    = "source"
	FieldDatasetID = "dataset_id"
	FieldRows      = "rows"
	FieldSeverity  = "severity"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentIngest    = "ingest"
	ComponentExport    = "export"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentSource    = "source"
	ComponentTemplate  = "template"
)

// Operation names.
const (
	OpLoad     = "load"
	OpExport   = "export"
	OpConsume  = "consume"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Error categories for the error_type attribute.
const (
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeMalformed     = "malformed_input"
)

// LogFields accumulates attributes for one log call.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

// WithError records err's message; nil is ignored.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithDataset records which dataset an event concerns.
func (f LogFields) WithDataset(id, source string, rows int) LogFields {
	f[FieldDatasetID] = id
	f[FieldSource] = source
	f[FieldRows] = rows
	return f
}

// ToSlice flattens the fields into slog's alternating key/value form.
func (f LogFields) ToSlice() []any {
	out := make([]any, 0, 2*len(f))
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}
