package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kozzzzzzy/twin-sync-addon/internal/cli"
	"github.com/kozzzzzzy/twin-sync-addon/internal/common"
	"github.com/kozzzzzzy/twin-sync-addon/internal/vision"
)

func authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Verify the configured Gemini API key",
		Long: `Make a minimal request against the Gemini API to confirm the
configured key is accepted. Nothing is stored.`,
		RunE: runAuth,
	}
}

func runAuth(cmd *cobra.Command, _ []string) error {
	apiKey := viper.GetString("gemini.api_key")
	if apiKey == "" {
		return common.NewUserError(
			"no Gemini API key configured; set gemini.api_key or TWINSPOT_GEMINI_API_KEY",
			common.ErrMissingConfig)
	}

	if !vision.ValidateAPIKey(cmd.Context(), apiKey) {
		return fmt.Errorf("the Gemini API rejected the configured key")
	}

	fmt.Println(cli.SortedStyle.Render(cli.SortedIcon + " Gemini API key accepted")) //nolint:forbidigo // User-facing output
	return nil
}
