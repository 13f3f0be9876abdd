package corpus

import (
	"context"
	"errors"

	"github.com/bastiangx/freqdict/pkg/source"
)

// OutcomeKind tags the result of fetching one identifier.
type OutcomeKind int

const (
	Fetched OutcomeKind = iota
	Missing
	Empty
	Failed
	TimedOut
)

func (k OutcomeKind) String() string {
	switch k {
	case Fetched:
		return "fetched"
	case Missing:
		return "missing"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	case TimedOut:
		return "timeout"
	}
	return "unknown"
}

// Outcome is the classified result of a single fetch.
// Text is only set when Kind is Fetched, Err only when Kind is Failed or TimedOut.
type Outcome struct {
	ID   string
	Kind OutcomeKind
	Text string
	Err  error
}

// Classify turns a raw Source result into an Outcome.
func Classify(id string, page source.Page, err error) Outcome {
	switch {
	case err != nil && isTimeout(err):
		return Outcome{ID: id, Kind: TimedOut, Err: err}
	case err != nil:
		return Outcome{ID: id, Kind: Failed, Err: err}
	case !page.Exists:
		return Outcome{ID: id, Kind: Missing}
	case page.Text == "":
		return Outcome{ID: id, Kind: Empty}
	}
	return Outcome{ID: id, Kind: Fetched, Text: page.Text}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
