// Package model contains domain models passed between layers.
package model

import "github.com/shopspring/decimal"

// Response is the normalized outcome token recorded by a kiosk.
type Response string

// Response classes. Anything that is not PASS aggregates as a failure.
const (
	ResponsePass  Response = "PASS"
	ResponseFail  Response = "FAIL"
	ResponseOther Response = "OTHER"
)

// Passed reports whether the response counts towards the pass total.
func (r Response) Passed() bool { return r == ResponsePass }

// Transaction is one validated dispensing event read from a kiosk file.
type Transaction struct {
	Timestamp  string          `json:"timestamp"`
	KioskID    string          `json:"kiosk_id"`
	ClientName string          `json:"client_name"` // empty when unattributed
	UserID     string          `json:"user_id"`
	VolumeML   decimal.Decimal `json:"volume_ml"` // never negative
	Response   Response        `json:"response"`
}

// Attributed reports whether the transaction carries a client name.
func (t Transaction) Attributed() bool { return t.ClientName != "" }
