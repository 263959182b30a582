package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List the ids of every stored technical-sheet image",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			service, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			ids, err := service.ListImages(cmd.Context())
			if err != nil {
				return err
			}

			return a.renderer(cmd.OutOrStdout()).images(ids)
		}),
	}
}

func newImageCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "image <id>",
		Short: "Write the technical-sheet image of a record",
		Long: `Write the raw image bytes of a record to --file, or to stdout when no
file is given. A record without an image fails with "Image not found".`,
		Example: `  fichasctl image INS-001 --file INS-001.png
  fichasctl image INS-001 | display`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			service, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			image, err := service.FetchImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if file == "" {
				_, err := cmd.OutOrStdout().Write(image.Data)
				return err
			}

			if err := os.WriteFile(file, image.Data, 0o644); err != nil {
				return fmt.Errorf("write image: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%s, %d bytes)\n", file, image.ContentType, len(image.Data))
			return nil
		}),
	}

	cmd.Flags().StringVar(&file, "file", "", "Output file (default stdout)")
	return cmd
}
