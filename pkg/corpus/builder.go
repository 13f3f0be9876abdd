/*
Package corpus drives a text source, the normalizer and the frequency table
across a list of article identifiers.

Every identifier is an isolated failure domain: a page that is missing,
empty, times out or fails to download is logged and skipped, and the run
carries on with the next one. Build never returns an error; the returned
Stats record which identifiers were skipped and why.

	b := corpus.NewBuilder(src, normalize.New(normalize.EnglishStopwords()), corpus.Options{})
	table, stats := b.Build(ctx, []string{"Cryptography", "Statistics"})

With Workers > 1 fetches run concurrently on a bounded pool. Aggregation
stays on a single goroutine so the table is the same as a sequential run.
*/
package corpus

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/bastiangx/freqdict/internal/logger"
	"github.com/bastiangx/freqdict/pkg/freq"
	"github.com/bastiangx/freqdict/pkg/normalize"
	"github.com/bastiangx/freqdict/pkg/source"
)

// Options tunes a Builder. The zero value fetches sequentially without a per-fetch timeout.
type Options struct {
	Workers      int
	FetchTimeout time.Duration
	Logger       *log.Logger
}

// Skip records an identifier that contributed nothing to the table.
type Skip struct {
	Index  int
	ID     string
	Reason OutcomeKind
	Err    error
}

// Stats summarizes a build run.
type Stats struct {
	RunID     string
	Requested int
	Fetched   int
	Skipped   []Skip
	Tokens    int
	Words     int
	Elapsed   time.Duration
}

// Builder builds a frequency table from a Source.
type Builder struct {
	source     source.Source
	normalizer *normalize.Normalizer
	workers    int
	timeout    time.Duration
	logger     *log.Logger
}

// NewBuilder creates a Builder reading from src.
func NewBuilder(src source.Source, n *normalize.Normalizer, opts Options) *Builder {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	l := opts.Logger
	if l == nil {
		l = logger.New("corpus")
	}
	return &Builder{
		source:     src,
		normalizer: n,
		workers:    workers,
		timeout:    opts.FetchTimeout,
		logger:     l,
	}
}

type indexedOutcome struct {
	index int
	Outcome
}

// Build fetches every identifier and returns a new table. The table always
// starts empty.
func (b *Builder) Build(ctx context.Context, ids []string) (*freq.Table, Stats) {
	start := time.Now()
	stats := Stats{RunID: uuid.New().String(), Requested: len(ids)}
	runLog := b.logger.With("run", stats.RunID[:8])
	table := freq.NewTable()

	runLog.Debugf("Building table from %d identifiers with %d worker(s)", len(ids), b.workers)

	if b.workers == 1 || len(ids) < 2 {
		for i, id := range ids {
			b.apply(runLog, table, &stats, indexedOutcome{index: i, Outcome: b.fetch(ctx, runLog, id)})
		}
	} else {
		for out := range b.fetchAll(ctx, runLog, ids) {
			b.apply(runLog, table, &stats, out)
		}
		sort.Slice(stats.Skipped, func(i, j int) bool {
			return stats.Skipped[i].Index < stats.Skipped[j].Index
		})
	}

	stats.Words = table.Len()
	stats.Tokens = table.Total()
	stats.Elapsed = time.Since(start)
	runLog.Info("Build finished",
		"fetched", stats.Fetched,
		"skipped", len(stats.Skipped),
		"words", stats.Words,
		"tokens", stats.Tokens,
		"took", stats.Elapsed.Round(time.Millisecond))
	return table, stats
}

// fetchAll runs fetches on a bounded pool and streams their outcomes.
func (b *Builder) fetchAll(ctx context.Context, runLog *log.Logger, ids []string) <-chan indexedOutcome {
	jobs := make(chan int)
	results := make(chan indexedOutcome, b.workers)

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- indexedOutcome{index: i, Outcome: b.fetch(ctx, runLog, ids[i])}
			}
		}()
	}

	go func() {
		for i := range ids {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	return results
}

// fetch retrieves one identifier and classifies the result.
func (b *Builder) fetch(ctx context.Context, runLog *log.Logger, id string) Outcome {
	runLog.Debug("Fetching", "id", id)
	if err := ctx.Err(); err != nil {
		return Classify(id, source.Page{ID: id}, err)
	}

	fetchCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	page, err := b.source.Fetch(fetchCtx, id)
	return Classify(id, page, err)
}

// apply folds one outcome into the table and stats.
func (b *Builder) apply(runLog *log.Logger, table *freq.Table, stats *Stats, out indexedOutcome) {
	switch out.Kind {
	case Fetched:
		tokens := b.normalizer.Normalize(out.Text)
		table.Accumulate(tokens)
		stats.Fetched++
		runLog.Debug("Processed", "id", out.ID, "tokens", len(tokens))
		return
	case Missing:
		runLog.Warnf("Page '%s' does not exist, skipping", out.ID)
	case Empty:
		runLog.Warnf("Page '%s' has no text, skipping", out.ID)
	case TimedOut:
		runLog.Warnf("Timed out fetching page '%s', skipping: %v", out.ID, out.Err)
	default:
		runLog.Errorf("Error fetching page '%s': %v", out.ID, out.Err)
	}
	stats.Skipped = append(stats.Skipped, Skip{Index: out.index, ID: out.ID, Reason: out.Kind, Err: out.Err})
}
