package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgmtsproject/dgmts-sub001/pkg/adapters/factory"
	"github.com/dgmtsproject/dgmts-sub001/pkg/adapters/ingest"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/services"
)

var (
	sampleInput     string
	sampleFormat    string
	sampleMinPoints int
	sampleEpsilon   float64
	samplePrecision int
	sampleRows      bool
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Downsample readings from a JSON or CSV file",
	Long: `Reads [timestamp, x, y, z] tuples (a JSON array, a {"data": [...]} envelope
or a CSV file with a timestamp,x,y,z header) and prints the sampled result.

Example:
  dgmts sample --in readings.json --min-points 500 --precision 3
  dgmts sample --in readings.csv --rows > combined.csv`,
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleInput, "in", "i", "-", "input file, - for stdin")
	sampleCmd.Flags().StringVarP(&sampleFormat, "format", "f", "", "input format (json, csv); inferred from extension when empty")
	sampleCmd.Flags().IntVar(&sampleMinPoints, "min-points", 0, "stride threshold (default from config)")
	sampleCmd.Flags().Float64Var(&sampleEpsilon, "epsilon", 0, "magnitude noise floor (default from config)")
	sampleCmd.Flags().IntVar(&samplePrecision, "precision", 0, "decimal places (default from config)")
	sampleCmd.Flags().BoolVar(&sampleRows, "rows", false, "print combined frame as timestamp,x,y,z CSV rows")
}

func runSample(cmd *cobra.Command, args []string) error {
	ctx := domain.NewContext(cmd.Context(), domain.RequestInfo{Source: domain.RequestSourceCLI})

	var in io.Reader = cmd.InOrStdin()
	if sampleInput != "-" {
		f, err := os.Open(sampleInput)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	format := sampleFormat
	if format == "" {
		format = inferFormat(sampleInput)
	}

	var collected ingest.Collector
	ingestor, err := factory.GetIngestorRegistry().Create(format, collected.Downstream())
	if err != nil {
		return err
	}
	res, err := ingestor.IngestStream(ctx, in)
	if err != nil {
		return fmt.Errorf("read readings: %w", err)
	}
	if res.Failed > 0 {
		logger.Warn("skipped malformed rows", zap.Int("failed", res.Failed), zap.Strings("errors", res.Errors))
	}

	opts := sampleOverridesFromFlags(cmd).Resolve(cfg.Sampler)
	result, err := services.NewCoverageSampler().Sample(collected.Readings, opts)
	if err != nil {
		return err
	}
	logger.Debug("sampled",
		zap.Int("readings", len(collected.Readings)),
		zap.Int("combined", result.Combined.Len()),
	)

	out := cmd.OutOrStdout()
	if sampleRows {
		return services.WriteRowsCSV(out, result.Combined.Rows(), opts.DecimalPrecision)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// sampleOverridesFromFlags 只收集命令行上显式给出的参数，--min-points 0 这类显式零值交给 Validate
func sampleOverridesFromFlags(cmd *cobra.Command) domain.OptionOverrides {
	var o domain.OptionOverrides
	flags := cmd.Flags()
	if flags.Changed("min-points") {
		v := sampleMinPoints
		o.MinPoints = &v
	}
	if flags.Changed("epsilon") {
		v := sampleEpsilon
		o.MagnitudeEpsilon = &v
	}
	if flags.Changed("precision") {
		v := samplePrecision
		o.DecimalPrecision = &v
	}
	return o
}

func inferFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "json"
}
