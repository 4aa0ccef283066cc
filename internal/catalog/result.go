package catalog

import "fmt"

// ImportResult tracks counts and errors from a bulk import or refresh run.
type ImportResult struct {
	Created  int      `json:"created"`
	Existing int      `json:"existing"`
	Updated  int      `json:"updated"`
	Errors   []string `json:"errors"`
}

// Add merges another ImportResult into this one.
func (r *ImportResult) Add(other ImportResult) {
	r.Created += other.Created
	r.Existing += other.Existing
	r.Updated += other.Updated
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *ImportResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary.
func (r *ImportResult) Summary() string {
	return fmt.Sprintf("created=%d existing=%d updated=%d errors=%d",
		r.Created, r.Existing, r.Updated, len(r.Errors))
}
