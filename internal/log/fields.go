package log

// Attribute keys shared by every component.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldReferer       = "referer"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldPeriod        = "period"
	FieldTransactionID = "transaction_id"
	FieldDescription   = "description"
	FieldAmount        = "amount"
	FieldCategory      = "category"
	FieldCount         = "count"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentWorker    = "worker"
	ComponentScheduler = "scheduler"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
)

const (
	OpCreate     = "create"
	OpCloseMonth = "close_month"
	OpImport     = "import"
	OpRestore    = "restore"
	OpExport     = "export"
)

// LogFields accumulates key/value pairs in insertion order.
type LogFields []any

func NewFields() LogFields {
	return make(LogFields, 0, 12)
}

func (f LogFields) WithComponent(component string) LogFields {
	return append(f, FieldComponent, component)
}

func (f LogFields) WithRequestID(id string) LogFields {
	return append(f, FieldRequestID, id)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	return append(f, FieldClientIP, ip)
}

// WithError is a no-op for a nil err.
func (f LogFields) WithError(err error) LogFields {
	if err == nil {
		return f
	}
	return append(f, FieldError, err.Error())
}

func (f LogFields) WithOperation(op string) LogFields {
	return append(f, FieldOperation, op)
}

func (f LogFields) WithTransaction(id, desc, amount, category string) LogFields {
	return append(f,
		FieldTransactionID, id,
		FieldDescription, desc,
		FieldAmount, amount,
		FieldCategory, category)
}

func (f LogFields) WithPeriod(key string) LogFields {
	return append(f, FieldPeriod, key)
}

// WithHTTPRequest skips empty user agent and referer values.
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f = append(f, FieldMethod, method, FieldPath, path)
	if query != "" {
		f = append(f, FieldQuery, query)
	}
	if userAgent != "" {
		f = append(f, FieldUserAgent, userAgent)
	}
	if referer != "" {
		f = append(f, FieldReferer, referer)
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	return append(f, FieldStatusCode, statusCode, FieldDuration, durationMs, FieldSuccess, success)
}

// ToSlice returns the pairs in the form slog's variadic args expect.
func (f LogFields) ToSlice() []any {
	return []any(f)
}
