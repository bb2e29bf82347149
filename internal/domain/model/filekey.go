package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

// Layout constants for the on-disk naming convention.
const (
	KioskDirPrefix = "kiosk_"
	filePrefix     = "transactions_"
	fileExt        = ".csv"
	centuryBase    = 2000
	centuryLast    = centuryBase + 99
)

// ErrInvalidFileName is returned for names that do not follow the convention.
var ErrInvalidFileName = errors.New("invalid transaction file name")

// The kiosk id is greedy so ids containing underscores still parse; the date
// is always the last six digits.
var fileNameRe = regexp.MustCompile(`^transactions_(.+)_(\d{2})(\d{2})(\d{2})\.csv$`)

// FileKey identifies one kiosk's transaction file for one calendar day.
type FileKey struct {
	KioskID string     `json:"kiosk_id"`
	Date    civil.Date `json:"date"`
}

// Valid reports whether the key names a file the convention can express: a
// real calendar date in 2000-2099 and a non-empty kiosk id. Other years would
// alias onto another century's file.
func (k FileKey) Valid() bool {
	return k.KioskID != "" && k.Date.IsValid() && InCentury(k.Date)
}

// InCentury reports whether d's year has a two-digit file name form.
func InCentury(d civil.Date) bool {
	return d.Year >= centuryBase && d.Year <= centuryLast
}

// Filename renders the key as transactions_<kiosk_id>_<MMDDYY>.csv.
func (k FileKey) Filename() string {
	return fmt.Sprintf("%s%s_%02d%02d%02d%s",
		filePrefix, k.KioskID, int(k.Date.Month), k.Date.Day, k.Date.Year%100, fileExt)
}

// Path is the slash-separated location of the file relative to the data root.
func (k FileKey) Path() string {
	return KioskDir(k.KioskID) + "/" + k.Filename()
}

// String implements fmt.Stringer.
func (k FileKey) String() string {
	return k.KioskID + "@" + k.Date.String()
}

// KioskDir returns the directory name holding a kiosk's files.
func KioskDir(kioskID string) string {
	return KioskDirPrefix + kioskID
}

// ParseFileName derives a FileKey from a file name. Two-digit years always
// map to the 2000s, and impossible dates such as 02/30 are rejected.
func ParseFileName(name string) (FileKey, error) {
	m := fileNameRe.FindStringSubmatch(name)
	if m == nil {
		return FileKey{}, fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	yy, _ := strconv.Atoi(m[4])

	d := civil.Date{Year: centuryBase + yy, Month: time.Month(month), Day: day}
	if !d.IsValid() {
		return FileKey{}, fmt.Errorf("%w: bad date in %q", ErrInvalidFileName, name)
	}
	return FileKey{KioskID: m[1], Date: d}, nil
}

// Weekday returns the calendar weekday of d.
func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}
