package batch

import (
	"github.com/a3tai/invoice-extractor/internal/invoice"
	pdferrors "github.com/a3tai/invoice-extractor/internal/pdf/errors"
)

// Record is one successfully extracted document.
type Record struct {
	Result invoice.Result `json:"result"`
	// Source is the base name of the originating file.
	Source string `json:"source"`
}

// Outcome is the result of attempting one document: a record or an error,
// never both.
type Outcome struct {
	Path   string
	Record Record
	// Serial is the number assigned to the record; zero on failure.
	Serial int
	Err    error
}

// OK reports whether the document produced a record
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Failure describes a skipped document.
type Failure struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func newFailure(o Outcome) Failure {
	return Failure{
		Path:  o.Path,
		Kind:  pdferrors.KindOf(o.Err).String(),
		Error: o.Err.Error(),
	}
}

// Summary reports what a run did.
type Summary struct {
	RunID     string    `json:"run_id"`
	Attempted int       `json:"attempted"`
	Succeeded int       `json:"succeeded"`
	Failed    []Failure `json:"failed,omitempty"`
	// FirstSerial and LastSerial bound the serials written; both are zero
	// when nothing was numbered.
	FirstSerial int `json:"first_serial,omitempty"`
	LastSerial  int `json:"last_serial,omitempty"`
}
