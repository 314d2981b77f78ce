package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozzzzzzy/twin-sync-addon/internal/cli"
	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
	"github.com/kozzzzzzy/twin-sync-addon/internal/report"
)

func voicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List the available report voices",
		RunE:  runVoices,
	}

	cmd.Flags().Bool("sample", false, "render a sample report in each voice")

	return cmd
}

func runVoices(cmd *cobra.Command, _ []string) error {
	sample, _ := cmd.Flags().GetBool("sample")

	fmt.Println(cli.FormatTitle("Voices")) //nolint:forbidigo // User-facing output

	for _, voice := range model.Voices {
		fmt.Printf("%s\t%s\n", cli.BoldStyle.Render(string(voice)), voice.Description()) //nolint:forbidigo // User-facing output
		if sample && voice != model.VoiceCustom {
			fmt.Println(cli.SubtleStyle.Render(sampleReport(voice))) //nolint:forbidigo // User-facing output
			fmt.Println()                                           //nolint:forbidigo // User-facing output
		}
	}
	return nil
}

// sampleReport renders a fixed scenario so voices can be compared side by
// side before committing a spot to one.
func sampleReport(voice model.VoiceKey) string {
	composer := report.NewComposer()
	return composer.Compose(report.Input{
		SpotName: "desk",
		Voice:    voice,
		Status:   model.StatusNeedsAttention,
		Verdicts: []model.ItemVerdict{
			{Label: "mug", State: model.ItemOutOfPlace, Note: "left by the keyboard", Recurring: true, RecurringCount: 4},
			{Label: "notebook", State: model.ItemClear},
		},
		Streak: model.StreakState{Current: 0, Best: 5},
	})
}
