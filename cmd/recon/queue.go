package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerlab/reconcile/internal/cli"
	"github.com/ledgerlab/reconcile/internal/queue"
)

func queueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the review queue of pending match suggestions",
		Long: `List stored match suggestions as a filterable, paginated review queue.
Statistics cover the whole filtered set, not just the shown page.`,
		RunE: runQueue,
	}

	cmd.Flags().String("status", "pending", "filter by status (pending, approved, rejected, all)")
	cmd.Flags().String("currency", "", "filter by currency code")
	cmd.Flags().String("tier", "", "filter by confidence tier (high, medium, low, none)")
	cmd.Flags().String("search", "", "substring filter over description and statement id")
	cmd.Flags().String("from", "", "earliest record date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "latest record date (YYYY-MM-DD)")
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("limit", queue.DefaultLimit, "page size")
	cmd.Flags().Bool("json", false, "emit the page as JSON")

	return cmd
}

func runQueue(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	asJSON, _ := cmd.Flags().GetBool("json")

	filters, page, err := queueArgs(cmd)
	if err != nil {
		return err
	}

	store, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	batches, err := store.GetAllBatches(ctx)
	if err != nil {
		return err
	}

	result := queue.NewProjector().Project(batches, filters, page)

	if asJSON {
		return printJSON(result)
	}

	printQueuePage(result)
	return nil
}

func queueArgs(cmd *cobra.Command) (queue.Filters, queue.Page, error) {
	status, _ := cmd.Flags().GetString("status")
	currency, _ := cmd.Flags().GetString("currency")
	tier, _ := cmd.Flags().GetString("tier")
	search, _ := cmd.Flags().GetString("search")
	fromText, _ := cmd.Flags().GetString("from")
	toText, _ := cmd.Flags().GetString("to")
	pageNum, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	filters := queue.Filters{
		Status:   status,
		Currency: currency,
		Tier:     tier,
		Search:   search,
	}

	if fromText != "" {
		from, err := time.Parse("2006-01-02", fromText)
		if err != nil {
			return filters, queue.Page{}, fmt.Errorf("invalid --from date %q", fromText)
		}
		filters.From = from
	}
	if toText != "" {
		to, err := time.Parse("2006-01-02", toText)
		if err != nil {
			return filters, queue.Page{}, fmt.Errorf("invalid --to date %q", toText)
		}
		filters.To = to
	}

	return filters, queue.Page{Number: pageNum, Limit: limit}, nil
}

func printQueuePage(page queue.QueuePage) {
	fmt.Println(cli.FormatTitle("Review queue"))
	fmt.Println(cli.FormatInfo(fmt.Sprintf("%d suggestions (%d pending, %d high, %d medium, %d low)",
		page.Stats.Total, page.Stats.Pending, page.Stats.High, page.Stats.Medium, page.Stats.Low)))

	for _, item := range page.Items {
		outcome := "new record"
		if item.Matched != nil {
			outcome = fmt.Sprintf("%d%% match (%s)", item.Confidence, item.Tier)
		}
		fmt.Printf("  %-28s %s  %-30s %10.2f %s  %s  [%s]\n",
			item.ID, item.Record.DateString(), truncateText(item.Record.Description, 30),
			item.Record.Amount, item.Record.Currency, outcome, item.Status)
	}

	if page.HasMore {
		fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("Page %d of more; rerun with --page %d", page.Page, page.Page+1)))
	}
}
