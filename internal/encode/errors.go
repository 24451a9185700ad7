package encode

import "fmt"

// WidthError reports a row whose encoded length differs from the column width.
type WidthError struct {
	Row  int
	Got  int
	Want int
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("encode: row %d has %d ids, want %d", e.Row, e.Got, e.Want)
}
