package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerlab/reconcile/internal/cli"
	"github.com/ledgerlab/reconcile/internal/model"
)

func approveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <suggestion-id>",
		Short: "Approve a pending match suggestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reviewSuggestion(cmd, args[0], model.StatusApproved)
		},
	}
}

func rejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <suggestion-id>",
		Short: "Reject a pending match suggestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reviewSuggestion(cmd, args[0], model.StatusRejected)
		},
	}
}

func reviewSuggestion(cmd *cobra.Command, suggestionID string, status model.SuggestionStatus) error {
	ctx := cmd.Context()

	store, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.UpdateStatus(ctx, suggestionID, status); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s %s", suggestionID, status)))
	return nil
}
