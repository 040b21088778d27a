package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/ports"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Sample an instrument's readings and archive the combined frame as CSV",
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	from, to, err := parseRangeFlags()
	if err != nil {
		return err
	}

	ctx := domain.NewContext(cmd.Context(), domain.RequestInfo{TraceID: uuid.NewString(), Source: domain.RequestSourceCLI})
	frames, cleanup, err := buildFrameService(ctx, cfg, logger)
	defer cleanup()
	if err != nil {
		return err
	}

	res, err := frames.Export(ctx, ports.FrameRequest{InstrumentID: rangeInstrument, From: from, To: to})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rows\n%s\n", res.Key, res.Rows, res.URL)
	return nil
}
