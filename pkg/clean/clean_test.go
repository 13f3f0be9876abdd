package clean

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"testing"
)

const epsilon = 1e-9

func rawRows(pairs ...string) []RawRow {
	rows := make([]RawRow, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		rows = append(rows, RawRow{Word: pairs[i], Count: pairs[i+1]})
	}
	return rows
}

func words(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Word
	}
	return out
}

func TestCleanTwentiethPercentile(t *testing.T) {
	raw := rawRows("w1", "1", "w2", "2", "w3", "3", "w4", "4", "w5", "5")
	res, err := Clean(raw, DefaultPercentile)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if math.Abs(res.Cutoff-1.8) > epsilon {
		t.Errorf("cutoff = %v, want 1.8", res.Cutoff)
	}
	if got := words(res.Rows); !reflect.DeepEqual(got, []string{"w2", "w3", "w4", "w5"}) {
		t.Errorf("kept = %v", got)
	}
	if res.Valid != 5 || res.Kept() != 4 || res.Dropped() != 1 {
		t.Errorf("valid=%d kept=%d dropped=%d", res.Valid, res.Kept(), res.Dropped())
	}
}

func TestCleanExcludesMalformedRows(t *testing.T) {
	raw := rawRows("w1", "5", "w2", "abc", "w3", "3")
	res, err := Clean(raw, DefaultPercentile)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if res.Valid != 2 {
		t.Errorf("valid = %d, want 2", res.Valid)
	}
	// cutoff over {3, 5} only: 3 + 0.2*(5-3)
	if math.Abs(res.Cutoff-3.4) > epsilon {
		t.Errorf("cutoff = %v, want 3.4", res.Cutoff)
	}
	for _, r := range res.Rows {
		if r.Word == "w2" {
			t.Errorf("malformed row w2 present in output")
		}
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Row.Word != "w2" || res.Rejected[0].Reason != MalformedCount {
		t.Errorf("rejected = %+v", res.Rejected)
	}

	// w2 is excluded regardless of cutoff
	all, err := Clean(raw, 0)
	if err != nil {
		t.Fatalf("Clean(0): %v", err)
	}
	if got := words(all.Rows); !reflect.DeepEqual(got, []string{"w1", "w3"}) {
		t.Errorf("kept at p=0 = %v", got)
	}
}

func TestCleanInclusiveBoundary(t *testing.T) {
	// position 0.25*4 = 1 lands exactly on the second smallest count
	raw := rawRows("a", "10", "b", "20", "c", "30", "d", "40", "e", "50")
	res, err := Clean(raw, 0.25)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if res.Cutoff != 20 {
		t.Fatalf("cutoff = %v, want 20", res.Cutoff)
	}
	if got := words(res.Rows); !reflect.DeepEqual(got, []string{"b", "c", "d", "e"}) {
		t.Errorf("row equal to cutoff must be kept, got %v", got)
	}
}

func TestCleanMonotonic(t *testing.T) {
	raw := rawRows("a", "7", "b", "1", "c", "1", "d", "3", "e", "12", "f", "40", "g", "2", "h", "9", "i", "5")
	prevCutoff := math.Inf(-1)
	prevKept := len(raw) + 1
	for p := 0.0; p <= 1.0001; p += 0.05 {
		if p > 1 {
			p = 1
		}
		res, err := Clean(raw, p)
		if err != nil {
			t.Fatalf("Clean(%v): %v", p, err)
		}
		if res.Cutoff < prevCutoff {
			t.Errorf("cutoff decreased at p=%v: %v < %v", p, res.Cutoff, prevCutoff)
		}
		if res.Kept() > prevKept {
			t.Errorf("kept increased at p=%v: %d > %d", p, res.Kept(), prevKept)
		}
		prevCutoff, prevKept = res.Cutoff, res.Kept()
	}
}

func TestCleanZeroPercentileKeepsAll(t *testing.T) {
	raw := rawRows("zeta", "4", "alpha", "9", "beta", "1", "gamma", "1")
	res, err := Clean(raw, 0)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	got := words(res.Rows)
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"alpha", "beta", "gamma", "zeta"}) {
		t.Errorf("p=0 kept %v", got)
	}
	for i, r := range res.Rows {
		want, _, _ := ParseCount(raw[i].Count)
		if r.Word != raw[i].Word || r.Count != want {
			t.Errorf("row %d changed: %+v vs %+v", i, r, raw[i])
		}
	}
}

func TestCleanIdenticalCounts(t *testing.T) {
	raw := rawRows("a", "7", "b", "7", "c", "7")
	res, err := Clean(raw, DefaultPercentile)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if res.Cutoff != 7 || res.Kept() != 3 {
		t.Errorf("cutoff=%v kept=%d, want 7 and 3", res.Cutoff, res.Kept())
	}
}

func TestCleanNoValidData(t *testing.T) {
	testCases := []struct {
		raw         []RawRow
		description string
	}{
		{nil, "Nil input"},
		{[]RawRow{}, "Empty input"},
		{rawRows("a", "abc", "", "3", "b", ""), "All rows invalid"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			res, err := Clean(tc.raw, DefaultPercentile)
			if !errors.Is(err, ErrNoValidData) {
				t.Fatalf("err = %v, want ErrNoValidData", err)
			}
			if res.Rows != nil {
				t.Errorf("expected no rows on failure, got %v", res.Rows)
			}
		})
	}
}

func TestCleanInvalidPercentile(t *testing.T) {
	raw := rawRows("a", "1")
	for _, p := range []float64{-0.1, 1.5, math.NaN()} {
		if _, err := Clean(raw, p); !errors.Is(err, ErrInvalidPercentile) {
			t.Errorf("Clean(p=%v) err = %v, want ErrInvalidPercentile", p, err)
		}
	}
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	raw := rawRows("b", "2", "a", "x", "c", "1")
	snapshot := append([]RawRow(nil), raw...)
	if _, err := Clean(raw, 0.5); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if !reflect.DeepEqual(raw, snapshot) {
		t.Errorf("input mutated: %v", raw)
	}
}

func TestParseCount(t *testing.T) {
	testCases := []struct {
		raw         string
		value       float64
		reason      RejectReason
		ok          bool
		description string
	}{
		{"5", 5, "", true, "Integer"},
		{" 12 ", 12, "", true, "Surrounding spaces"},
		{"5.0", 5, "", true, "Float text"},
		{"1e3", 1000, "", true, "Exponent"},
		{"-3", -3, "", true, "Negative still numeric"},
		{"", 0, MissingCount, false, "Empty"},
		{"   ", 0, MissingCount, false, "Blank"},
		{"abc", 0, MalformedCount, false, "Letters"},
		{"5 apples", 0, MalformedCount, false, "Trailing text"},
		{"NaN", 0, NonFiniteCount, false, "NaN"},
		{"inf", 0, NonFiniteCount, false, "Infinity"},
		{"1e999", 0, NonFiniteCount, false, "Overflow"},
		{"0x1p4", 0, MalformedCount, false, "Hex float"},
		{"-0X10", 0, MalformedCount, false, "Signed hex"},
		{"1_000", 0, MalformedCount, false, "Digit separator"},
		{"+7", 7, "", true, "Explicit plus sign"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			v, reason, ok := ParseCount(tc.raw)
			if ok != tc.ok || reason != tc.reason || (ok && v != tc.value) {
				t.Errorf("ParseCount(%q) = (%v, %q, %v), want (%v, %q, %v)", tc.raw, v, reason, ok, tc.value, tc.reason, tc.ok)
			}
		})
	}
}

func TestValidateMissingWord(t *testing.T) {
	valid, rejected := Validate([]RawRow{{Word: "", Count: "4"}, {Word: "  ", Count: "4"}, {Word: "ok", Count: "4"}})
	if len(valid) != 1 || valid[0].Word != "ok" {
		t.Errorf("valid = %v", valid)
	}
	if len(rejected) != 2 || rejected[0].Reason != MissingWord || rejected[1].Index != 1 {
		t.Errorf("rejected = %+v", rejected)
	}
}

func TestQuantile(t *testing.T) {
	testCases := []struct {
		values      []float64
		p           float64
		expected    float64
		description string
	}{
		{[]float64{42}, 0.2, 42, "Single value"},
		{[]float64{5, 1, 4, 2, 3}, 0.2, 1.8, "Unsorted input"},
		{[]float64{1, 2, 3, 4, 5}, 0, 1, "Minimum"},
		{[]float64{1, 2, 3, 4, 5}, 1, 5, "Maximum"},
		{[]float64{1, 2, 3, 4}, 0.5, 2.5, "Median of even count"},
		{[]float64{10, 20}, 0.2, 12, "Two values"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			orig := append([]float64(nil), tc.values...)
			got, err := Quantile(tc.values, tc.p)
			if err != nil {
				t.Fatalf("Quantile: %v", err)
			}
			if math.Abs(got-tc.expected) > epsilon {
				t.Errorf("Quantile(%v, %v) = %v, want %v", tc.values, tc.p, got, tc.expected)
			}
			if !reflect.DeepEqual(tc.values, orig) {
				t.Errorf("Quantile sorted its input")
			}
		})
	}

	if _, err := Quantile(nil, 0.2); !errors.Is(err, ErrNoValidData) {
		t.Errorf("Quantile(nil) err = %v", err)
	}
}
