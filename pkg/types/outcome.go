package types

// DedupeStatus classifies the result of a dedupe-insert.
type DedupeStatus int32

const (
	// StatusInserted means no duplicate existed and a new row was created.
	StatusInserted DedupeStatus = 0
	// StatusTouched means a live duplicate was found and its timestamp
	// was bumped; no new row was created.
	StatusTouched DedupeStatus = 1
	// StatusRejected means the capture was dropped before reaching
	// storage (empty or whitespace-only text). Not an error.
	StatusRejected DedupeStatus = 2
)

// String returns the status name for logs and CLI output.
func (s DedupeStatus) String() string {
	switch s {
	case StatusInserted:
		return "inserted"
	case StatusTouched:
		return "touched"
	case StatusRejected:
		return "rejected"
	}
	return "unknown"
}

// Outcome is the three-way result of a dedupe-insert. ID is the created
// item's id for StatusInserted, the existing item's id for StatusTouched,
// and zero for StatusRejected.
type Outcome struct {
	Status DedupeStatus
	ID     int64
}
