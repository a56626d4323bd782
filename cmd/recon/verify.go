package main

import (
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ledgerlab/reconcile/internal/config"
	"github.com/ledgerlab/reconcile/internal/report"
)

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <ledger-file> <import-file> [alternate-file]",
		Short: "Reconcile two or three sources and report discrepancies",
		Long: `Compare the ledger against a fresh import, and optionally an alternate
export, then report monthly count discrepancies, missing records, duplicate
groups, and ranked recommendations.

The first argument is the ledger, the second the newest import, the third an
optional alternate export.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runVerify,
	}

	cmd.Flags().Bool("json", false, "emit the full report as JSON")

	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetDescription("Reading sources"),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionClearOnFinish(),
	)

	sources := make([]report.NamedCollection, 0, len(args))
	for _, path := range args {
		records, _, err := loadRecords(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		name := filepath.Base(path)
		sources = append(sources, report.NamedCollection{Name: name, Records: records})
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	matchCfg, err := config.LoadMatchConfig()
	if err != nil {
		return err
	}

	rep, err := report.NewReporter(matchCfg, report.DefaultThresholds()).Report(sources)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(rep)
	}

	fmt.Println(report.NewCLIFormatter().FormatSummary(rep))
	return nil
}
