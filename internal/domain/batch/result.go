package batch

// ItemStatus is the outcome the service reported for one document.
type ItemStatus string

// Item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the per-document outcome returned by a bulk index call.
// Used for diagnostics only; batch success is decided by the HTTP status.
type Result struct {
	key        string
	status     ItemStatus
	statusCode int
	message    string
}

// NewOK creates a successful item result.
func NewOK(key string, statusCode int) Result {
	return Result{key: key, status: StatusOK, statusCode: statusCode}
}

// NewError creates a failed item result.
func NewError(key string, statusCode int, message string) Result {
	return Result{key: key, status: StatusError, statusCode: statusCode, message: message}
}

// Key returns the document key.
func (r Result) Key() string { return r.key }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// StatusCode returns the per-document HTTP-like status code.
func (r Result) StatusCode() int { return r.statusCode }

// Message returns the service error message, if any.
func (r Result) Message() string { return r.message }

// Failed counts results with StatusError.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.status == StatusError {
			n++
		}
	}
	return n
}
