package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/viralab/hookbrief/internal/analyzer"
	"github.com/viralab/hookbrief/internal/generator"
)

var (
	generateFromFlag   string
	generatePromptFlag string
	generateModelFlag  string
	generateWaitFlag   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Submit a generation job from an analysis brief",
	Long: `Generate reads a brief produced by "hookbrief analyze --output", builds
an enriched generation prompt from it, and submits the job to the
text-to-video provider. With --wait it polls until the job finishes and
prints the resulting video URL.

The provider API key is read from OPENAI_API_KEY.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateFromFlag, "from", "", "Path to the analysis brief JSON (required)")
	generateCmd.Flags().StringVarP(&generatePromptFlag, "prompt", "p", "", "Main generation prompt (required)")
	generateCmd.Flags().StringVarP(&generateModelFlag, "model", "m", generator.DefaultModel, "Generation model")
	generateCmd.Flags().BoolVar(&generateWaitFlag, "wait", false, "Poll the job until it completes")
	generateCmd.MarkFlagRequired("from")
	generateCmd.MarkFlagRequired("prompt")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	payload, err := os.ReadFile(generateFromFlag)
	if err != nil {
		return fmt.Errorf("read brief: %w", err)
	}
	var result analyzer.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return fmt.Errorf("parse brief %s: %w", generateFromFlag, err)
	}

	prompt := generator.BuildEnrichedPrompt(generatePromptFlag, &result)
	opts := generator.OptionsFromResult(&result)
	opts.Model = generateModelFlag

	client := generator.NewClient(apiKey, "")
	ctx := cmd.Context()

	id, err := client.Submit(ctx, prompt, opts)
	if err != nil {
		return err
	}
	fmt.Printf("generation id: %s\n", id)

	if !generateWaitFlag {
		return nil
	}

	log.Info().Str("generationId", id).Msg("Waiting for generation to finish")
	video, err := client.Await(ctx, id, 15*time.Second)
	if err != nil {
		return err
	}
	if video.Status == generator.StatusFailed {
		return fmt.Errorf("generation failed: %s", video.Error)
	}
	fmt.Printf("video url: %s\n", video.VideoURL)
	return nil
}
