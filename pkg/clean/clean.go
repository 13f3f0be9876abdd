/*
Package clean prunes a persisted frequency dictionary.

Cleaning runs in three explicit steps:

 1. Validate: every raw row's count is coerced to a number. Rows with a missing
    word, a missing count, or a count that is not a finite number are rejected
    and take no further part, not even in the percentile computation.
 2. Cutoff: the requested percentile (DefaultPercentile, the 20th, unless told
    otherwise) of the valid counts, using linear interpolation between ranks.
 3. Filter: rows whose count is at least the cutoff are kept, in input order.

An input with no valid rows has no cutoff and yields ErrNoValidData.
*/
package clean

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultPercentile drops roughly the rarest fifth of the dictionary.
const DefaultPercentile = 0.20

var (
	// ErrNoValidData is returned when no row survives validation.
	ErrNoValidData = errors.New("no valid data")
	// ErrInvalidPercentile is returned for percentiles outside [0, 1].
	ErrInvalidPercentile = errors.New("percentile must be within [0, 1]")
)

// RawRow is a dictionary record as read from storage. Count is kept as text
// so malformed values survive loading and can be rejected here.
// An empty field means the value is absent.
type RawRow struct {
	Word  string
	Count string
}

// Row is a validated dictionary record.
type Row struct {
	Word  string
	Count float64
}

// RejectReason explains why a raw row was excluded.
type RejectReason string

const (
	MissingWord    RejectReason = "missing word"
	MissingCount   RejectReason = "missing count"
	MalformedCount RejectReason = "malformed count"
	NonFiniteCount RejectReason = "non-finite count"
)

// Rejection pairs a raw row with its position in the input and the reason it was dropped.
type Rejection struct {
	Index  int
	Row    RawRow
	Reason RejectReason
}

// Result holds the outcome of Clean.
type Result struct {
	Rows       []Row
	Rejected   []Rejection
	Cutoff     float64
	Percentile float64
	Valid      int
}

// Kept returns the number of rows retained.
func (r Result) Kept() int {
	return len(r.Rows)
}

// Dropped returns the number of valid rows below the cutoff.
func (r Result) Dropped() int {
	return r.Valid - len(r.Rows)
}

// ParseCount coerces a raw count into a number.
func ParseCount(raw string) (float64, RejectReason, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, MissingCount, false
	}
	if !isDecimal(s) {
		return 0, MalformedCount, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		// out of range still parses to ±Inf
		if !errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, MalformedCount, false
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, NonFiniteCount, false
	}
	return v, "", true
}

// isDecimal rejects the Go-only literal forms ParseFloat also accepts:
// hex mantissas (0x1p4) and digit separators (1_000).
func isDecimal(s string) bool {
	unsigned := strings.TrimLeft(s, "+-")
	if len(unsigned) > 1 && unsigned[0] == '0' && (unsigned[1] == 'x' || unsigned[1] == 'X') {
		return false
	}
	return !strings.Contains(s, "_")
}

// Validate splits raw rows into valid rows and rejections. The input is not modified.
func Validate(raw []RawRow) ([]Row, []Rejection) {
	valid := make([]Row, 0, len(raw))
	var rejected []Rejection
	for i, r := range raw {
		if strings.TrimSpace(r.Word) == "" {
			rejected = append(rejected, Rejection{Index: i, Row: r, Reason: MissingWord})
			continue
		}
		count, reason, ok := ParseCount(r.Count)
		if !ok {
			rejected = append(rejected, Rejection{Index: i, Row: r, Reason: reason})
			continue
		}
		valid = append(valid, Row{Word: r.Word, Count: count})
	}
	return valid, rejected
}

// Filter returns the rows with a count at or above cutoff, in input order.
func Filter(rows []Row, cutoff float64) []Row {
	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Count >= cutoff {
			kept = append(kept, r)
		}
	}
	return kept
}

// Clean validates raw, computes the percentile cutoff over the valid rows and
// keeps the rows at or above it.
func Clean(raw []RawRow, percentile float64) (Result, error) {
	res := Result{Percentile: percentile}
	if percentile < 0 || percentile > 1 || math.IsNaN(percentile) {
		return res, fmt.Errorf("%w: got %v", ErrInvalidPercentile, percentile)
	}

	valid, rejected := Validate(raw)
	res.Rejected = rejected
	res.Valid = len(valid)
	if len(valid) == 0 {
		return res, fmt.Errorf("%w: %d rows read, %d rejected", ErrNoValidData, len(raw), len(rejected))
	}

	counts := make([]float64, len(valid))
	for i, r := range valid {
		counts[i] = r.Count
	}
	cutoff, err := Quantile(counts, percentile)
	if err != nil {
		return res, err
	}

	res.Cutoff = cutoff
	res.Rows = Filter(valid, cutoff)
	log.Debug("Dictionary cleaned", "cutoff", cutoff, "percentile", percentile,
		"valid", res.Valid, "kept", res.Kept(), "rejected", len(rejected))
	return res, nil
}
