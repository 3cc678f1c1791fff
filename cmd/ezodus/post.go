package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/xhad/ezodus/internal/models"
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// NewPostCmd creates the post command.
func NewPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Write an illustrated social post",
		Long: `Post writes a social media post about a topic in a brand voice and
generates images to go with it.

Examples:
  ezodus post --topic "Summer sale" --voice "Playful, warm, lots of emoji"

  # Save the images
  ezodus post --topic "Launch day" --out ./launch`,
		Args: cobra.NoArgs,
		RunE: runPostCmd,
	}

	cmd.Flags().String("topic", "", "Topic of the post (required)")
	cmd.Flags().String("voice", "", "Brand voice to write in (defaults to the configured tone)")
	cmd.Flags().StringP("out", "o", "", "Directory to write the generated images to")
	return cmd
}

func runPostCmd(cmd *cobra.Command, _ []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	voice, _ := cmd.Flags().GetString("voice")
	outDir, _ := cmd.Flags().GetString("out")
	if topic == "" {
		return errors.New("--topic is required")
	}

	_, _, svc, err := setup(cmd, true)
	if err != nil {
		return err
	}

	spinner := getSpinner(cmd.ErrOrStderr(), " Writing post and images...")
	result, err := svc.GeneratePost(cmd.Context(), models.PostRequest{Topic: topic, BrandVoice: voice})
	spinner.Finish()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	heading.Fprintln(out, "Post")
	fmt.Fprintln(out, result.Text)
	fmt.Fprintln(out)

	if outDir == "" {
		muted.Fprintf(out, "%d images generated (use --out to save them)\n", len(result.Images))
		return nil
	}

	paths, err := writeImages(outDir, result.Images)
	if err != nil {
		return err
	}
	for _, p := range paths {
		success.Fprintf(out, "saved %s\n", p)
	}
	return nil
}

// writeImages decodes data URIs into dir as image-1.png, image-2.png, ...
func writeImages(dir string, uris []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	paths := make([]string, 0, len(uris))
	for i, uri := range uris {
		img, err := models.ParseDataURI(uri)
		if err != nil {
			return paths, fmt.Errorf("image %d: %w", i+1, err)
		}
		ext, ok := imageExtensions[img.MIMEType]
		if !ok {
			ext = ".img"
		}

		path := filepath.Join(dir, fmt.Sprintf("image-%d%s", i+1, ext))
		if err := os.WriteFile(path, img.Data, 0600); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
