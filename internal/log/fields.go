package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldModule     = "module"
	FieldTab        = "tab"
	FieldKind       = "kind"
	FieldKey        = "key"
	FieldDashboard  = "dashboard"
	FieldRecipe     = "recipe"
	FieldRecords    = "records"
	FieldCurrency   = "currency"
	FieldBackend    = "backend"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentLedger      = "ledger"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentSheets      = "sheets"
	ComponentCache       = "cache"
	ComponentBackend     = "backend"
	ComponentExpenses    = "expenses"
	ComponentInventory   = "inventory"
	ComponentReceivables = "receivables"
	ComponentDashboard   = "dashboard"
)

// Operations defines standard operation names
const (
	OpRead      = "read"
	OpParse     = "parse"
	OpAggregate = "aggregate"
	OpAssemble  = "assemble"
	OpSync      = "sync"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
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

// WithTab adds the coordinates of a tab read.
func (f LogFields) WithTab(kind, module, tab, key string) LogFields {
	f[FieldKind] = kind
	f[FieldModule] = module
	f[FieldTab] = tab
	f[FieldKey] = key
	return f
}

// WithHTTP adds HTTP request/response fields
func (f LogFields) WithHTTP(method, path string, statusCode int, durationMs int64) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
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
