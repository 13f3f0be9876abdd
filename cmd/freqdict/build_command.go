package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/freqdict/internal/utils"
	"github.com/bastiangx/freqdict/pkg/config"
	"github.com/bastiangx/freqdict/pkg/corpus"
	"github.com/bastiangx/freqdict/pkg/dictionary"
	"github.com/bastiangx/freqdict/pkg/freq"
	"github.com/bastiangx/freqdict/pkg/normalize"
	"github.com/bastiangx/freqdict/pkg/source"
)

type buildOptions struct {
	output     string
	titlesFile string
	source     string
	dir        string
	stopwords  string
	workers    int
	timeout    time.Duration
	maxPages   int
	top        int
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build [title...]",
		Short: "Build a frequency dictionary from articles",
		Long: `Fetch each article, normalize its text and count word occurrences.

Titles come from the arguments, then --titles-file, then the config file.
Articles that are missing, empty or fail to download are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *ctx.config
			applyBuildFlags(cmd, &cfg, opts)

			titles, err := resolveTitles(args, opts.titlesFile, cfg.Build)
			if err != nil {
				return err
			}
			if len(titles) == 0 {
				return fmt.Errorf("no titles to fetch")
			}

			src, err := newSource(cfg.Source)
			if err != nil {
				return err
			}
			stopwords := normalize.EnglishStopwords()
			if cfg.Build.StopwordsFile != "" {
				if stopwords, err = normalize.LoadStopwords(cfg.Build.StopwordsFile, stopwords); err != nil {
					return err
				}
			}

			fetchTimeout := cfg.Build.FetchTimeout()
			if cmd.Flags().Changed("timeout") {
				fetchTimeout = opts.timeout
			}
			builder := corpus.NewBuilder(src, normalize.New(stopwords), corpus.Options{
				Workers:      cfg.Build.Workers,
				FetchTimeout: fetchTimeout,
			})
			table, stats := builder.Build(cmd.Context(), titles)
			if err := cmd.Context().Err(); err != nil {
				log.Warn("Build interrupted, nothing written")
				return err
			}

			store := dictionary.NewStore(dictionary.Options{ChunkSize: cfg.Clean.ChunkSize})
			if err := store.SaveTable(cmd.Context(), cfg.Build.Output, table); err != nil {
				log.Errorf("Error saving word data: %v", err)
				return err
			}
			log.Info("Word data saved!", "path", cfg.Build.Output, "words", table.Len())

			printBuildReport(cmd.OutOrStdout(), stats, table, opts.top)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "out", "o", "", "Output dictionary path (format from extension)")
	flags.StringVar(&opts.titlesFile, "titles-file", "", "File with one article title per line")
	flags.StringVar(&opts.source, "source", "", "Text source: wikipedia or dir")
	flags.StringVar(&opts.dir, "dir", "", "Directory of <title>.txt files for --source dir")
	flags.StringVar(&opts.stopwords, "stopwords", "", "File of extra stopwords")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Concurrent fetches")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Per-article fetch timeout (0 disables)")
	flags.IntVar(&opts.maxPages, "max-pages", 0, "Fetch at most this many articles")
	flags.IntVar(&opts.top, "top", 10, "Number of top words to print")
	return cmd
}

// applyBuildFlags overrides config values with the flags the user set.
func applyBuildFlags(cmd *cobra.Command, cfg *config.Config, opts buildOptions) {
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Build.Output = opts.output
	}
	if flags.Changed("source") {
		cfg.Source.Kind = opts.source
	}
	if flags.Changed("dir") {
		cfg.Source.Dir = opts.dir
		if !flags.Changed("source") {
			cfg.Source.Kind = "dir"
		}
	}
	if flags.Changed("stopwords") {
		cfg.Build.StopwordsFile = opts.stopwords
	}
	if flags.Changed("workers") {
		cfg.Build.Workers = opts.workers
	}
	if flags.Changed("max-pages") {
		cfg.Build.MaxPages = opts.maxPages
	}
}

// resolveTitles picks titles from args, then the titles file, then config.
func resolveTitles(args []string, titlesFile string, build config.BuildConfig) ([]string, error) {
	var titles []string
	switch {
	case len(args) > 0:
		titles = args
	case titlesFile != "":
		file, err := os.Open(titlesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open titles file: %w", err)
		}
		defer file.Close()
		if titles, err = readTitles(file); err != nil {
			return nil, fmt.Errorf("failed to read titles file %s: %w", titlesFile, err)
		}
	default:
		return build.PageTitles(), nil
	}
	if build.MaxPages > 0 && build.MaxPages < len(titles) {
		titles = titles[:build.MaxPages]
	}
	return titles, nil
}

// readTitles reads one title per line, skipping blanks and # comments.
func readTitles(r io.Reader) ([]string, error) {
	var titles []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		titles = append(titles, line)
	}
	return titles, scanner.Err()
}

func newSource(cfg config.SourceConfig) (source.Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "wikipedia":
		wiki := source.NewWikipedia(source.WikipediaOptions{
			Endpoint:  cfg.Endpoint,
			Language:  cfg.Language,
			UserAgent: cfg.UserAgent,
		})
		log.Debugf("Using Wikipedia source at %s", wiki.Endpoint())
		return wiki, nil
	case "dir":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("source dir requires a directory (--dir or [source].dir)")
		}
		log.Debugf("Using directory source at %s", cfg.Dir)
		return source.NewDir(cfg.Dir), nil
	}
	return nil, fmt.Errorf("unknown source %q (want wikipedia or dir)", cfg.Kind)
}

func printBuildReport(w io.Writer, stats corpus.Stats, table *freq.Table, top int) {
	fmt.Fprintln(w, renderTable(
		[]string{"Requested", "Fetched", "Skipped", "Tokens", "Words", "Took"},
		[][]string{{
			utils.FormatCount(stats.Requested),
			utils.FormatCount(stats.Fetched),
			utils.FormatCount(len(stats.Skipped)),
			utils.FormatCount(stats.Tokens),
			utils.FormatCount(stats.Words),
			utils.FormatDuration(stats.Elapsed),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	if len(stats.Skipped) > 0 {
		rows := make([][]string, 0, len(stats.Skipped))
		for _, s := range stats.Skipped {
			reason := s.Reason.String()
			if s.Err != nil {
				reason += ": " + s.Err.Error()
			}
			rows = append(rows, []string{s.ID, reason})
		}
		fmt.Fprintln(w, renderTable([]string{"Skipped", "Reason"}, rows, nil))
	}

	if top > 0 && table.Len() > 0 {
		entries := table.Top(top)
		rows := make([][]string, 0, len(entries))
		for i, e := range entries {
			rows = append(rows, []string{strconv.Itoa(i + 1), e.Word, utils.FormatCount(e.Count)})
		}
		fmt.Fprintln(w, renderTable([]string{"#", "Word", "Count"}, rows,
			[]columnAlignment{alignRight, alignLeft, alignRight}))
	}
}
