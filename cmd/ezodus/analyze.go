package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xhad/ezodus/internal/models"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [url]",
		Short: "Describe the brand voice of a page or text",
		Long: `Analyze fetches a page, extracts its text and asks Gemini to describe the
brand's voice in a few bullet points.

Examples:
  # Analyze a channel (YouTube URLs are pointed at the about page)
  ezodus analyze https://www.youtube.com/@brand

  # Analyze text directly
  ezodus analyze --text "We build tools for makers. Fast, simple, yours."`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringP("text", "t", "", "Analyze this text instead of fetching a page")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	text, err := cmd.Flags().GetString("text")
	if err != nil {
		return err
	}
	req := models.ScrapeRequest{Text: text}
	if len(args) == 1 {
		req.URL = args[0]
	}
	if req.URL == "" && req.Text == "" {
		return errors.New("a URL argument or --text is required")
	}

	_, _, svc, err := setup(cmd, true)
	if err != nil {
		return err
	}

	spinner := getSpinner(cmd.ErrOrStderr(), " Analyzing brand voice...")
	result, err := svc.AnalyzeBrandVoice(cmd.Context(), req)
	spinner.Finish()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	heading.Fprintln(out, "Brand voice")
	fmt.Fprintln(out, result.BrandVoice)
	return nil
}
