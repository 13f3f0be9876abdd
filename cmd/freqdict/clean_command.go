package main

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/freqdict/internal/utils"
	"github.com/bastiangx/freqdict/pkg/clean"
	"github.com/bastiangx/freqdict/pkg/dictionary"
)

type cleanOptions struct {
	input      string
	output     string
	percentile float64
	format     string
	chunkSize  int
}

func (o *cleanOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.input, "in", "i", "", "Dictionary to read")
	flags.StringVarP(&o.output, "out", "o", "", "Dictionary to write (defaults to --in)")
	flags.StringVar(&o.format, "format", "", "Output format: csv, json, msgpack, sqlite or chunks")
	flags.IntVar(&o.chunkSize, "chunk-size", 0, "Words per chunk file for chunk output")
}

// paths resolves input and output against the [clean] config section.
func (o *cleanOptions) paths(cmd *cobra.Command, ctx *commandContext) (string, string) {
	cfg := ctx.config.Clean
	if cmd.Flags().Changed("in") {
		cfg.Input = o.input
		if !cmd.Flags().Changed("out") {
			cfg.Output = ""
		}
	}
	if cmd.Flags().Changed("out") {
		cfg.Output = o.output
	}
	return cfg.Input, cfg.CleanOutput()
}

// store builds the output store. A forced --format must agree with the
// format the output path implies, so a later load reads what was written.
func (o *cleanOptions) store(cmd *cobra.Command, ctx *commandContext, output string) (*dictionary.Store, dictionary.FileFormat, error) {
	opts := dictionary.Options{ChunkSize: ctx.config.Clean.ChunkSize}
	if cmd.Flags().Changed("chunk-size") {
		opts.ChunkSize = o.chunkSize
	}

	detected, detectErr := dictionary.DetectFormat(output)
	if o.format == "" {
		if detectErr != nil {
			return nil, dictionary.FormatUnknown, detectErr
		}
		return dictionary.NewStore(opts), detected, nil
	}

	format, err := dictionary.ParseFormat(o.format)
	if err != nil {
		return nil, dictionary.FormatUnknown, err
	}
	if detectErr == nil && detected != format {
		return nil, dictionary.FormatUnknown, fmt.Errorf(
			"--format %s does not match output %s (%s); pass --out with a matching extension", format, output, detected)
	}
	opts.Format = format
	return dictionary.NewStore(opts), format, nil
}

// loadInput checks input against its detected format and reads its raw rows.
func loadInput(cmd *cobra.Command, input string) ([]clean.RawRow, error) {
	format, err := dictionary.DetectFormat(input)
	if err != nil {
		return nil, err
	}
	if err := dictionary.ValidateFileFormat(input, format); err != nil {
		return nil, err
	}
	return dictionary.NewStore(dictionary.Options{Format: format}).LoadRows(cmd.Context(), input)
}

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var opts cleanOptions

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Drop words whose count falls below a percentile cutoff",
		Long: `Load a dictionary, discard rows with a missing word or a non-numeric count,
and keep the rows whose count is at or above the given percentile of the
remaining counts. The result replaces the input unless --out is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := opts.paths(cmd, ctx)
			percentile := ctx.config.Clean.Percentile
			if cmd.Flags().Changed("percentile") {
				percentile = opts.percentile
			}

			// --format only applies to the output
			store, format, err := opts.store(cmd, ctx, output)
			if err != nil {
				return err
			}
			raw, err := loadInput(cmd, input)
			if err != nil {
				return err
			}
			result, err := clean.Clean(raw, percentile)
			if err != nil {
				return fmt.Errorf("clean %s: %w", input, err)
			}
			for _, r := range result.Rejected {
				log.Debug("Rejected row", "index", r.Index, "word", r.Row.Word, "count", r.Row.Count, "reason", r.Reason)
			}

			if err := store.SaveRows(cmd.Context(), output, result.Rows); err != nil {
				return err
			}

			log.Infof("Cutoff frequency at %s percentile: %s", ordinal(percentile), formatCutoff(result.Cutoff))
			log.Infof("Original words: %d, After filtering: %d", result.Valid, result.Kept())
			printCleanReport(cmd.OutOrStdout(), input, output, format, result)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().Float64VarP(&opts.percentile, "percentile", "p", clean.DefaultPercentile, "Percentile in [0, 1] used as the cutoff")
	return cmd
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var opts cleanOptions

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Rewrite a dictionary in another format, dropping malformed rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("in") || !cmd.Flags().Changed("out") {
				return fmt.Errorf("convert needs both --in and --out")
			}
			input, output := opts.paths(cmd, ctx)
			store, format, err := opts.store(cmd, ctx, output)
			if err != nil {
				return err
			}

			raw, err := loadInput(cmd, input)
			if err != nil {
				return err
			}
			rows, rejected := clean.Validate(raw)
			if len(rejected) > 0 {
				log.Warnf("Dropped %d malformed rows from %s", len(rejected), input)
			}

			if err := store.SaveRows(cmd.Context(), output, rows); err != nil {
				return err
			}
			log.Info("Converted dictionary", "from", input, "to", output, "format", formatDescription(format), "rows", len(rows))
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}

func printCleanReport(w io.Writer, input, output string, format dictionary.FileFormat, result clean.Result) {
	fmt.Fprintln(w, renderTable(
		[]string{"Input", "Output", "Format", "Rows", "Rejected", "Cutoff", "Kept", "Dropped"},
		[][]string{{
			input,
			output,
			formatDescription(format),
			utils.FormatCount(result.Valid + len(result.Rejected)),
			utils.FormatCount(len(result.Rejected)),
			formatCutoff(result.Cutoff),
			utils.FormatCount(result.Kept()),
			utils.FormatCount(result.Dropped()),
		}},
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
}

func formatDescription(format dictionary.FileFormat) string {
	if info, ok := dictionary.GetFormatInfo(format); ok {
		return info.Description
	}
	return format.String()
}

func formatCutoff(v float64) string {
	return utils.FormatFloat(v, 4)
}

// ordinal renders a fraction as an ordinal percentile (0.2 -> 20th).
func ordinal(p float64) string {
	pct := p * 100
	rounded := math.Round(pct)
	if math.Abs(pct-rounded) > 1e-9 {
		return strconv.FormatFloat(pct, 'f', 2, 64) + "th"
	}
	n := int(rounded)
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
