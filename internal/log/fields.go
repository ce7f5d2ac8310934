package log

// Component names used across the application.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentLedger  = "ledger"
	ComponentAuth    = "auth"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentConfig  = "config"
)

// Field names for structured attributes. Keeping them here avoids the
// same attribute appearing under three different spellings.
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldTraceID       = "trace_id"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatus        = "status"
	FieldDuration      = "duration"
	FieldRemoteAddr    = "remote_addr"
	FieldTransactionID = "transaction_id"
	FieldMonthKey      = "month_key"
	FieldUserID        = "user_id"
	FieldRole          = "role"
	FieldEvent         = "event"
	FieldQueue         = "queue"
	FieldExchange      = "exchange"
	FieldCount         = "count"
	FieldPort          = "port"
	FieldDBPath        = "db_path"
	FieldFile          = "file"
	FieldYear          = "year"
)
