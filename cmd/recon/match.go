package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ledgerlab/reconcile/internal/cli"
	"github.com/ledgerlab/reconcile/internal/common"
	"github.com/ledgerlab/reconcile/internal/config"
	"github.com/ledgerlab/reconcile/internal/match"
	"github.com/ledgerlab/reconcile/internal/model"
	"github.com/ledgerlab/reconcile/internal/queue"
	"github.com/ledgerlab/reconcile/internal/storage"
)

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <incoming-file>",
		Short: "Match incoming records against the existing ledger",
		Long: `Score each incoming record against the existing ledger and produce
match suggestions: link to an existing record, or flag as new.

Suggestions are saved for review with --save; nothing is linked
automatically.`,
		Args: cobra.ExactArgs(1),
		RunE: runMatch,
	}

	cmd.Flags().String("against", "", "existing ledger records file (required)")
	cmd.Flags().String("statement-id", "", "statement id the suggestions are filed under (required with --save)")
	cmd.Flags().Bool("save", false, "persist the suggestions for review")
	cmd.Flags().Bool("json", false, "emit the full result as JSON")
	_ = cmd.MarkFlagRequired("against")

	return cmd
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	againstPath, _ := cmd.Flags().GetString("against")
	statementID, _ := cmd.Flags().GetString("statement-id")
	save, _ := cmd.Flags().GetBool("save")
	asJSON, _ := cmd.Flags().GetBool("json")

	if save && statementID == "" {
		return fmt.Errorf("--save requires --statement-id")
	}

	incoming, _, err := loadRecords(args[0])
	if err != nil {
		return fmt.Errorf("failed to load incoming records: %w", err)
	}
	if len(incoming) == 0 {
		return fmt.Errorf("%w in %s", common.ErrNoRecords, args[0])
	}
	existing, _, err := loadRecords(againstPath)
	if err != nil {
		return fmt.Errorf("failed to load existing records: %w", err)
	}

	matchCfg, err := config.LoadMatchConfig()
	if err != nil {
		return err
	}

	result := match.NewMatcher(matchCfg).Reconcile(incoming, existing)

	if save {
		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		// Overlay decisions from earlier runs so the printed suggestions show
		// what is actually still awaiting review.
		prior, err := store.GetStatuses(ctx)
		if err != nil {
			return err
		}
		batch := []queue.StatementSuggestions{{StatementID: statementID, Suggestions: result.Suggestions}}
		queue.ApplyStatuses(batch, prior)
		result.Suggestions = batch[0].Suggestions

		run := storage.NewRun(statementID)
		run.Incoming = len(incoming)
		run.Existing = len(existing)
		run.Matched = len(result.Matched())
		run.New = len(result.Suggestions) - len(result.Matched())
		run.Skipped = len(result.Skipped)

		if err := store.SaveRun(ctx, run); err != nil {
			return err
		}
		if len(result.Suggestions) > 0 {
			if err := store.SaveSuggestions(ctx, statementID, run.ID, result.Suggestions); err != nil {
				return err
			}
		}
		slog.Info("Saved suggestions", "statement_id", statementID, "run_id", run.ID, "count", len(result.Suggestions))
	}

	if asJSON {
		return printJSON(result)
	}

	printMatchSummary(result)
	return nil
}

func printMatchSummary(result match.Result) {
	matched := result.Matched()
	fmt.Println(cli.FormatTitle("Match suggestions"))
	fmt.Println(cli.FormatInfo(fmt.Sprintf("%d incoming: %d matched, %d new, %d skipped",
		len(result.Suggestions), len(matched), len(result.Suggestions)-len(matched), len(result.Skipped))))

	for _, sug := range result.Suggestions {
		line := fmt.Sprintf("%s  %-30s %10.2f %s", sug.Record.DateString(),
			truncateText(sug.Record.Description, 30), sug.Record.Amount, sug.Record.Currency)
		switch {
		case sug.IsNew:
			fmt.Println("  " + cli.SubtleStyle.Render(line+"  -> new record"))
		case sug.Tier() == model.TierHigh:
			fmt.Println("  " + cli.SuccessStyle.Render(fmt.Sprintf("%s  -> %d%% match", line, sug.Confidence())))
		default:
			fmt.Println("  " + cli.WarningStyle.Render(fmt.Sprintf("%s  -> %d%% match", line, sug.Confidence())))
		}
		for _, reason := range sug.Reasons {
			fmt.Println("      " + cli.SubtleStyle.Render(reason))
		}
	}
}

func truncateText(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
