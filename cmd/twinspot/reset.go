package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozzzzzzy/twin-sync-addon/internal/cli"
)

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset <spot>",
		Short: "Reset a spot's current streak",
		Long: `Zero a spot's current streak. The best streak stays on the books;
resets are counted so you can see how often a fresh start was needed.`,
		Args: cobra.ExactArgs(1),
		RunE: runReset,
	}

	cmd.Flags().Bool("yes", false, "confirm the reset")

	return cmd
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		return fmt.Errorf("refusing to reset a streak without --yes")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	eng, err := initEngineLocal(store)
	if err != nil {
		return err
	}

	spot, err := resolveSpot(ctx, store, args[0])
	if err != nil {
		return err
	}

	state, err := eng.ResetStreak(ctx, spot.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Streak for %s reset. Best remains %s.\n", //nolint:forbidigo // User-facing output
		cli.BoldStyle.Render(spot.Name),
		cli.BoldStyle.Render(fmt.Sprintf("%d", state.Best)))
	return nil
}
