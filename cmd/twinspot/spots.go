package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozzzzzzy/twin-sync-addon/internal/cli"
	"github.com/kozzzzzzy/twin-sync-addon/internal/memory"
	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
	"github.com/kozzzzzzy/twin-sync-addon/internal/service"
)

func spotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spots",
		Short: "Manage the spots being watched",
		Long: `Create, inspect and modify spots: the named zones twinspot watches.

Each spot binds a camera entity to a definition of what "sorted" means
there, plus the voice its reports are written in.`,
	}

	cmd.AddCommand(spotsAddCmd())
	cmd.AddCommand(spotsListCmd())
	cmd.AddCommand(spotsShowCmd())
	cmd.AddCommand(spotsSetCmd())
	cmd.AddCommand(spotsDeleteCmd())

	return cmd
}

func spotsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new spot",
		Long: `Add a spot to watch. The definition defaults to the template for the
spot type; override it with --definition to describe exactly what sorted
looks like, one bulleted line per item.`,
		Args: cobra.ExactArgs(1),
		RunE: runSpotsAdd,
	}

	cmd.Flags().String("camera", "", "Home Assistant camera entity (required)")
	cmd.Flags().String("type", string(model.SpotCustom), "spot type (work, chill, sleep, kitchen, entryway, storage, custom)")
	cmd.Flags().String("voice", string(model.DefaultVoice), "report voice")
	cmd.Flags().String("definition", "", "what sorted looks like, bulleted lines")
	cmd.Flags().String("voice-prompt", "", "custom voice template (voice=custom)")
	_ = cmd.MarkFlagRequired("camera")

	return cmd
}

func runSpotsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	camera, _ := cmd.Flags().GetString("camera")
	spotType, _ := cmd.Flags().GetString("type")
	voice, _ := cmd.Flags().GetString("voice")
	definition, _ := cmd.Flags().GetString("definition")
	voicePrompt, _ := cmd.Flags().GetString("voice-prompt")

	st := model.SpotType(spotType)
	if !st.Valid() {
		return fmt.Errorf("unknown spot type %q", spotType)
	}
	if definition == "" {
		definition = st.Template()
	}
	if definition == "" {
		return fmt.Errorf("custom spots need --definition to say what sorted looks like")
	}

	spot := &model.Spot{
		Name:              args[0],
		CameraEntity:      camera,
		Definition:        definition,
		Type:              st,
		Voice:             model.VoiceKey(voice),
		CustomVoicePrompt: voicePrompt,
	}
	if err := spot.Validate(); err != nil {
		return err
	}

	created, err := store.CreateSpot(ctx, spot)
	if err != nil {
		return fmt.Errorf("failed to create spot: %w", err)
	}

	fmt.Println(cli.FormatTitle("Spot added")) //nolint:forbidigo // User-facing output
	printSpotDetails(created, nil, nil)
	return nil
}

func spotsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all spots",
		RunE:  runSpotsList,
	}
}

func runSpotsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	spots, err := store.GetAllSpots(ctx)
	if err != nil {
		return fmt.Errorf("failed to list spots: %w", err)
	}
	if len(spots) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No spots yet. Use 'twinspot spots add' to create one.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle("Spots")) //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.BoldStyle.Render("ID"),
		cli.BoldStyle.Render("Name"),
		cli.BoldStyle.Render("Type"),
		cli.BoldStyle.Render("Status"),
		cli.BoldStyle.Render("Streak"),
		cli.BoldStyle.Render("Last Check"))

	for i := range spots {
		spot := &spots[i]
		streak, streakErr := store.GetStreak(ctx, spot.ID)
		if streakErr != nil {
			return fmt.Errorf("failed to read streak: %w", streakErr)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			spot.ID,
			spot.Name,
			spot.Type.Label(),
			cli.FormatStatus(spot.Status),
			cli.FormatStreak(streak.Current, streak.Best),
			formatLastCheck(spot.LastCheck))
	}
	return nil
}

func spotsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <spot>",
		Short: "Show one spot in detail",
		Long: `Show a spot's definition, streak, recurring items and habit patterns.
The spot may be given by ID or by name.`,
		Args: cobra.ExactArgs(1),
		RunE: runSpotsShow,
	}
}

func runSpotsShow(cmd *cobra.Command, args []string) error {
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

	streak, err := store.GetStreak(ctx, spot.ID)
	if err != nil {
		return fmt.Errorf("failed to read streak: %w", err)
	}
	stats, err := store.GetRecurrenceStats(ctx, spot.ID)
	if err != nil {
		return fmt.Errorf("failed to read recurrence stats: %w", err)
	}

	printSpotDetails(spot, streak, stats)

	records, err := store.GetChecks(ctx, spot.ID, service.CheckFilter{})
	if err != nil {
		return fmt.Errorf("failed to read check history: %w", err)
	}
	insights := memory.Insights(records, time.Local)
	if insights.TotalChecks > 0 {
		fmt.Println() //nolint:forbidigo // User-facing output
		fmt.Println(cli.BoldStyle.Render("Patterns")) //nolint:forbidigo // User-facing output
		fmt.Printf("  checks: %d\n", insights.TotalChecks) //nolint:forbidigo // User-facing output
		if insights.WorstDay != "" {
			fmt.Printf("  toughest day: %s\n", insights.WorstDay) //nolint:forbidigo // User-facing output
		}
		if insights.BestDay != "" {
			fmt.Printf("  best day: %s\n", insights.BestDay) //nolint:forbidigo // User-facing output
		}
		if insights.UsuallySortedBy != "" {
			fmt.Printf("  usually sorted by %s\n", insights.UsuallySortedBy) //nolint:forbidigo // User-facing output
		}
	}
	return nil
}

func spotsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <spot>",
		Short: "Update a spot's settings",
		Args:  cobra.ExactArgs(1),
		RunE:  runSpotsSet,
	}

	cmd.Flags().String("name", "", "rename the spot")
	cmd.Flags().String("camera", "", "change the camera entity")
	cmd.Flags().String("type", "", "change the spot type")
	cmd.Flags().String("voice", "", "change the report voice")
	cmd.Flags().String("definition", "", "replace the sorted definition")
	cmd.Flags().String("voice-prompt", "", "replace the custom voice template")

	return cmd
}

func runSpotsSet(cmd *cobra.Command, args []string) error {
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

	changed := false
	if v, _ := cmd.Flags().GetString("name"); v != "" {
		spot.Name = v
		changed = true
	}
	if v, _ := cmd.Flags().GetString("camera"); v != "" {
		spot.CameraEntity = v
		changed = true
	}
	if v, _ := cmd.Flags().GetString("type"); v != "" {
		st := model.SpotType(v)
		if !st.Valid() {
			return fmt.Errorf("unknown spot type %q", v)
		}
		spot.Type = st
		changed = true
	}
	if v, _ := cmd.Flags().GetString("voice"); v != "" {
		spot.Voice = model.VoiceKey(v)
		changed = true
	}
	if v, _ := cmd.Flags().GetString("definition"); v != "" {
		spot.Definition = v
		changed = true
	}
	if cmd.Flags().Changed("voice-prompt") {
		v, _ := cmd.Flags().GetString("voice-prompt")
		spot.CustomVoicePrompt = v
		changed = true
	}
	if !changed {
		fmt.Println(cli.SubtleStyle.Render("Nothing to change.")) //nolint:forbidigo // User-facing output
		return nil
	}

	if err := spot.Validate(); err != nil {
		return err
	}
	if err := store.UpdateSpot(ctx, spot); err != nil {
		return fmt.Errorf("failed to update spot: %w", err)
	}

	fmt.Println(cli.FormatTitle("Spot updated")) //nolint:forbidigo // User-facing output
	printSpotDetails(spot, nil, nil)
	return nil
}

func spotsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <spot>",
		Short: "Delete a spot and its entire history",
		Long: `Delete a spot. Its check history, recurrence stats, streak and any
snooze window go with it. This cannot be undone, so --yes is required.`,
		Args: cobra.ExactArgs(1),
		RunE: runSpotsDelete,
	}

	cmd.Flags().Bool("yes", false, "confirm the deletion")

	return cmd
}

func runSpotsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		return fmt.Errorf("refusing to delete without --yes")
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
	if err := store.DeleteSpot(ctx, spot.ID); err != nil {
		return fmt.Errorf("failed to delete spot: %w", err)
	}

	fmt.Println(cli.SortedStyle.Render(fmt.Sprintf("Deleted %q and its history.", spot.Name))) //nolint:forbidigo // User-facing output
	return nil
}

func printSpotDetails(spot *model.Spot, streak *model.StreakState, stats []model.RecurrenceStat) {
	fmt.Printf("%s %s\n", cli.BoldStyle.Render(spot.Name), cli.SubtleStyle.Render(fmt.Sprintf("(#%d, %s)", spot.ID, spot.Type.Label()))) //nolint:forbidigo // User-facing output
	fmt.Printf("  camera: %s\n", spot.CameraEntity)                                                                                      //nolint:forbidigo // User-facing output
	fmt.Printf("  voice:  %s\n", spot.Voice)                                                                                             //nolint:forbidigo // User-facing output
	fmt.Printf("  status: %s\n", cli.FormatStatus(spot.Status))                                                                          //nolint:forbidigo // User-facing output
	if streak != nil && (streak.Current > 0 || streak.Best > 0) {
		fmt.Printf("  streak: %s\n", cli.FormatStreak(streak.Current, streak.Best)) //nolint:forbidigo // User-facing output
	}
	fmt.Printf("  last check: %s\n", formatLastCheck(spot.LastCheck)) //nolint:forbidigo // User-facing output

	fmt.Println() //nolint:forbidigo // User-facing output
	fmt.Println(cli.BoldStyle.Render("Sorted means")) //nolint:forbidigo // User-facing output
	for _, line := range strings.Split(strings.TrimSpace(spot.Definition), "\n") {
		fmt.Printf("  %s\n", line) //nolint:forbidigo // User-facing output
	}

	recurrence := memory.New()
	var recurring []model.RecurrenceStat
	for i := range stats {
		if recurrence.Recurring(&stats[i]) {
			recurring = append(recurring, stats[i])
		}
	}
	if len(recurring) > 0 {
		fmt.Println() //nolint:forbidigo // User-facing output
		fmt.Println(cli.BoldStyle.Render("Keeps coming back")) //nolint:forbidigo // User-facing output
		for _, stat := range recurring {
			fmt.Printf("  %s %s\n", stat.Label, cli.SubtleStyle.Render(fmt.Sprintf("(%d of last %d checks)", stat.Occurrences, stat.EligibleChecks))) //nolint:forbidigo // User-facing output
		}
	}
}

func formatLastCheck(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		slog.Error("failed to close storage", "error", err)
	}
}
