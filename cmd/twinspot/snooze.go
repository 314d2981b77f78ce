package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozzzzzzy/twin-sync-addon/internal/cli"
	"github.com/kozzzzzzy/twin-sync-addon/internal/engine"
)

func snoozeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snooze <spot> <duration>",
		Short: "Pause streak and memory accounting for a spot",
		Long: `Snooze a spot for a while (for example 2h, 3h30m, 48h). Checks during
the window still run and are recorded, but they neither feed recurrence
memory nor touch the streak. Snoozing again replaces the window.`,
		Args: cobra.ExactArgs(2),
		RunE: runSnooze,
	}
}

func runSnooze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	duration, err := time.ParseDuration(args[1])
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", args[1], err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	spot, err := resolveSpot(ctx, store, args[0])
	if err != nil {
		return err
	}

	window, err := engine.NewSnoozeManager(store).Snooze(ctx, spot.ID, duration)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s snoozed until %s\n", //nolint:forbidigo // User-facing output
		cli.SubtleStyle.Render(cli.SnoozeIcon),
		cli.BoldStyle.Render(spot.Name),
		window.Until.Local().Format("Mon 15:04"))
	return nil
}

func unsnoozeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsnooze <spot>",
		Short: "End a spot's snooze early",
		Args:  cobra.ExactArgs(1),
		RunE:  runUnsnooze,
	}
}

func runUnsnooze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	spot, err := resolveSpot(ctx, store, args[0])
	if err != nil {
		return err
	}

	if err := engine.NewSnoozeManager(store).Unsnooze(ctx, spot.ID); err != nil {
		return err
	}

	fmt.Printf("%s is awake again\n", cli.BoldStyle.Render(spot.Name)) //nolint:forbidigo // User-facing output
	return nil
}
