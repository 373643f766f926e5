package batch

// ItemStatus is the processing outcome of a single import item.
type ItemStatus string

// Import item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of importing one record. Line is the 1-based
// position of the record in its source.
type Result struct {
	line   int
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful import result.
func NewOK(line int, id string) Result { return Result{line: line, id: id, status: StatusOK} }

// NewError creates a failed import result. id may be empty when none was assigned yet.
func NewError(line int, id string, err error) Result {
	return Result{line: line, id: id, status: StatusError, err: err}
}

// Line returns the source position of the record.
func (r Result) Line() int { return r.line }

// ID returns the sighting identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts successful and failed results.
func Summary(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.status == StatusOK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
