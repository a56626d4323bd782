package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerlab/reconcile/internal/cli"
	"github.com/ledgerlab/reconcile/internal/dedupe"
)

func dedupeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedupe <file>",
		Short: "Find duplicate records within a single source",
		Long: `Scan one source for duplicates: exact duplicates sharing a full
fingerprint, and near duplicates sharing date, amount, and currency under
differing descriptions.`,
		Args: cobra.ExactArgs(1),
		RunE: runDedupe,
	}

	cmd.Flags().Bool("json", false, "emit the full result as JSON")

	return cmd
}

func runDedupe(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	records, _, err := loadRecords(args[0])
	if err != nil {
		return err
	}

	dupes := dedupe.NewDetector().FindDuplicates(records)

	if asJSON {
		return printJSON(dupes)
	}

	fmt.Println(cli.FormatTitle("Duplicate scan"))
	if len(dupes.Exact) == 0 && len(dupes.Near) == 0 {
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("No duplicates among %d records", len(records))))
		return nil
	}

	fmt.Println(cli.FormatWarning(fmt.Sprintf("%d records involved in duplicate groups", dupes.AffectedCount())))

	if len(dupes.Exact) > 0 {
		fmt.Println(cli.SubtitleStyle.Render(fmt.Sprintf("Exact duplicates: %d groups", len(dupes.Exact))))
		printGroups(dupes.Exact)
	}
	if len(dupes.Near) > 0 {
		fmt.Println(cli.SubtitleStyle.Render(fmt.Sprintf("Near duplicates: %d groups", len(dupes.Near))))
		printGroups(dupes.Near)
	}
	return nil
}

func printGroups(groups []dedupe.Group) {
	for _, g := range groups {
		fmt.Printf("  %s  %.2f %s (%d records)\n",
			g.Sample.DateString(), g.Sample.Amount, g.Sample.Currency, len(g.Members))
		for _, m := range g.Members {
			fmt.Println("      " + cli.SubtleStyle.Render(m.Description))
		}
	}
}
