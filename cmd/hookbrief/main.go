// hookbrief analyzes short-form videos into structured creative briefs
// and drives downstream video generation from them.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/viralab/hookbrief/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "hookbrief",
	Short: "Creative-brief analysis for short-form video",
	Long: `Hookbrief decomposes a short-form video into audio and sampled frames,
runs transcription, per-frame vision analysis, hook detection, and
whole-video classification, and assembles the results into a single
structured brief. The brief can then drive a text-to-video generation
job.

Examples:
  hookbrief analyze --url https://www.tiktok.com/@user/video/123
  hookbrief analyze --file ./clip.mp4 --output brief.json
  hookbrief generate --from brief.json --prompt "Recreate this as a cooking demo" --wait`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
