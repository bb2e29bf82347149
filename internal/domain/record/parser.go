// Package record turns raw kiosk CSV rows into validated transactions.
//
// Validation is lenient: rows without a user or with a
// negative or non-numeric volume are skipped, and every response other than
// PASS counts as a failure.
package record

import (
	"fmt"
	"strings"

	"github.com/okian/kiosk-analytics/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Column names of the transaction file header. Names are case-sensitive.
const (
	ColTimestamp  = "Timestamp"
	ColClientName = "Client_Name"
	ColUserID     = "User_ID"
	ColVolumeML   = "Volume_ML"
	ColResponse   = "Response"
)

// Header lists the columns in the order kiosks write them.
var Header = []string{ColTimestamp, ColClientName, ColUserID, ColVolumeML, ColResponse}

// Row is one delimited line keyed by header name.
type Row map[string]string

// Parse validates row and returns the transaction it describes, or an error
// wrapping ErrMalformedRow. It has no side effects.
func Parse(kioskID string, row Row) (model.Transaction, error) {
	userID := strings.TrimSpace(row[ColUserID])
	if userID == "" {
		return model.Transaction{}, fmt.Errorf("%w: empty user id", ErrMalformedRow)
	}

	rawVolume, ok := row[ColVolumeML]
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: missing volume", ErrMalformedRow)
	}
	volume, err := decimal.NewFromString(strings.TrimSpace(rawVolume))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: volume %q: %v", ErrMalformedRow, rawVolume, err)
	}
	if volume.IsNegative() {
		return model.Transaction{}, fmt.Errorf("%w: negative volume %s", ErrMalformedRow, volume)
	}

	return model.Transaction{
		Timestamp:  strings.TrimSpace(row[ColTimestamp]),
		KioskID:    kioskID,
		ClientName: strings.TrimSpace(row[ColClientName]),
		UserID:     userID,
		VolumeML:   volume,
		Response:   NormalizeResponse(row[ColResponse]),
	}, nil
}

// NormalizeResponse trims and upper-cases a raw response token.
// Empty or unknown tokens classify as OTHER.
func NormalizeResponse(raw string) model.Response {
	switch model.Response(strings.ToUpper(strings.TrimSpace(raw))) {
	case model.ResponsePass:
		return model.ResponsePass
	case model.ResponseFail:
		return model.ResponseFail
	default:
		return model.ResponseOther
	}
}
