package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozzzzzzy/twin-sync-addon/internal/cli"
	"github.com/kozzzzzzy/twin-sync-addon/internal/service"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <spot>",
		Short: "Check one spot now",
		Long: `Grab a fresh camera frame of the spot, judge it against its sorted
definition, fold the result into its memory and streak, and print the
report in the spot's voice.`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().Bool("json", false, "emit the raw check result as JSON")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	eng, err := initEngine(store)
	if err != nil {
		return err
	}

	spot, err := resolveSpot(ctx, store, args[0])
	if err != nil {
		return err
	}

	result, err := eng.RunCheck(ctx, spot.ID)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Println(cli.RenderReport(spot.Name, result.Report)) //nolint:forbidigo // User-facing output
	if !result.Eligible {
		fmt.Println(cli.SubtleStyle.Render(cli.SnoozeIcon + " snoozed: this check stays out of streaks and memory")) //nolint:forbidigo // User-facing output
	}
	return nil
}

func checkAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-all",
		Short: "Check every spot",
		Long: `Run a check for every spot. Snoozed spots are skipped; one spot
failing does not stop the rest.`,
		RunE: runCheckAll,
	}
}

func runCheckAll(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	eng, err := initEngine(store)
	if err != nil {
		return err
	}

	spots, err := store.GetAllSpots(ctx)
	if err != nil {
		return fmt.Errorf("failed to list spots: %w", err)
	}
	if len(spots) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No spots to check.")) //nolint:forbidigo // User-facing output
		return nil
	}

	bar := progressbar.NewOptions(len(spots),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Checking spots...[reset]"),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
	eng.SetNotifier(progressNotifier{bar: bar})

	outcomes, err := eng.CheckAll(ctx)
	if err != nil {
		return err
	}
	_ = bar.Finish()

	failures := 0
	for _, outcome := range outcomes {
		switch {
		case outcome.Skipped:
			fmt.Printf("%s %s\n", cli.SubtleStyle.Render(cli.SnoozeIcon), cli.SubtleStyle.Render(outcome.SpotName+" (snoozed)")) //nolint:forbidigo // User-facing output
		case outcome.Err != nil:
			failures++
			fmt.Println(cli.FormatError(outcome.SpotName + ": " + outcome.Err.Error())) //nolint:forbidigo // User-facing output
		default:
			fmt.Printf("%s %s", cli.FormatStatus(outcome.Result.Status), cli.BoldStyle.Render(outcome.SpotName)) //nolint:forbidigo // User-facing output
			if streak := cli.FormatStreak(outcome.Result.CurrentStreak, outcome.Result.BestStreak); streak != "" {
				fmt.Printf("  %s", streak) //nolint:forbidigo // User-facing output
			}
			fmt.Println() //nolint:forbidigo // User-facing output
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d spot checks failed", failures, len(spots))
	}
	return nil
}

// progressNotifier bumps the check-all progress bar as results land.
type progressNotifier struct {
	bar *progressbar.ProgressBar
}

func (p progressNotifier) CheckCompleted(_ context.Context, _ service.CheckCompletedEvent) {
	_ = p.bar.Add(1)
}
