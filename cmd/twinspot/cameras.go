package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozzzzzzy/twin-sync-addon/internal/cli"
)

func camerasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cameras",
		Short: "List Home Assistant camera entities",
		Long: `List the camera entities Home Assistant exposes, to pick one when
adding a spot. With --test, fetch a frame from the given entity to
verify it actually produces images.`,
		RunE: runCameras,
	}

	cmd.Flags().String("test", "", "fetch one frame from this camera entity")

	return cmd
}

func runCameras(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	camera, err := initCamera()
	if err != nil {
		return err
	}

	if entity, _ := cmd.Flags().GetString("test"); entity != "" {
		if camera.TestCamera(ctx, entity) {
			fmt.Printf("%s %s produced a frame\n", cli.SortedStyle.Render(cli.SortedIcon), entity) //nolint:forbidigo // User-facing output
			return nil
		}
		return fmt.Errorf("camera %s did not produce a frame", entity)
	}

	cameras, err := camera.ListCameras(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cameras: %w", err)
	}
	if len(cameras) == 0 {
		fmt.Println(cli.SubtleStyle.Render("Home Assistant reports no camera entities.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle(cli.CameraIcon + " Cameras")) //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	fmt.Fprintf(w, "%s\t%s\n", cli.BoldStyle.Render("Entity"), cli.BoldStyle.Render("Name"))
	for _, cam := range cameras {
		fmt.Fprintf(w, "%s\t%s\n", cam.EntityID, cam.Name)
	}
	return nil
}
