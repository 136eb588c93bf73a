package processors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedRows marks a batch rejected because of data-quality defects.
var ErrMalformedRows = errors.New("transaction batch contains malformed rows")

// RowError ties a data-quality defect to the offending row's position in the
// input batch.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// RowErrors is the collected defect list for one rejected batch. The batch is
// rejected atomically: partial ingestion of a tax ledger is worse than a hard
// stop, and collecting every defect lets the caller fix the file in one pass.
type RowErrors []RowError

func (e RowErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, re := range e {
		msgs = append(msgs, re.Error())
	}
	return fmt.Sprintf("%v: %s", ErrMalformedRows, strings.Join(msgs, "; "))
}

func (e RowErrors) Unwrap() error { return ErrMalformedRows }
