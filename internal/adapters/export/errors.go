package export

import "errors"

// Sentinel kinds for workbook rendering.
var (
	ErrNilReport = errors.New("nil analysis report")
	ErrRender    = errors.New("workbook render failed")
)
