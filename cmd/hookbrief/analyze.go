package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/viralab/hookbrief/internal/analyzer"
	"github.com/viralab/hookbrief/internal/credentials"
	"github.com/viralab/hookbrief/internal/mediaproc"
)

var (
	analyzeURLFlag      string
	analyzeFileFlag     string
	analyzeOwnerFlag    string
	analyzeOutputFlag   string
	analyzeLanguageFlag string
	analyzeTimeoutFlag  time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one video into a structured brief",
	Long: `Analyze downloads (or copies) the video, extracts audio and frame
samples, runs the inference stages, and prints the aggregate analysis as
JSON.

One of --url or --file is required.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeURLFlag, "url", "u", "", "Source video URL")
	analyzeCmd.Flags().StringVarP(&analyzeFileFlag, "file", "f", "", "Local video file to analyze")
	analyzeCmd.Flags().StringVar(&analyzeOwnerFlag, "owner", "", "Credential pool owner tag (e.g. sergio, ruben)")
	analyzeCmd.Flags().StringVarP(&analyzeOutputFlag, "output", "o", "", "Write the result JSON to this file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeLanguageFlag, "language", "", "Transcription language hint (default es)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeoutFlag, "timeout", analyzer.DefaultRunTimeout, "Overall run budget")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if (analyzeURLFlag == "") == (analyzeFileFlag == "") {
		return fmt.Errorf("exactly one of --url or --file is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := analyzer.NewClient(ctx, credentials.EnvResolver{}, analyzeOwnerFlag)
	if err != nil {
		return fmt.Errorf("initialize inference client: %w", err)
	}

	pipeline := analyzer.NewPipeline(client, analyzer.PipelineConfig{
		Timeout:  analyzeTimeoutFlag,
		Language: analyzeLanguageFlag,
	})

	src := mediaproc.Source{URL: analyzeURLFlag, UploadPath: analyzeFileFlag}
	result, err := pipeline.Run(ctx, src)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if analyzeOutputFlag != "" {
		if err := os.WriteFile(analyzeOutputFlag, payload, 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		log.Info().Str("path", analyzeOutputFlag).Msg("Analysis written")
		return nil
	}

	fmt.Println(string(payload))
	return nil
}
