package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldError     = "error"
	FieldScanID    = "scan_id"
	FieldExpenseID = "expense_id"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentStorage     = "storage"
	ComponentObjectStore = "objectstore"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentOCR         = "ocr"
	ComponentCache       = "cache"
)
