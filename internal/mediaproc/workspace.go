package mediaproc

// workspace.go owns the per-run temporary directory. One pipeline run gets
// exactly one workspace; no two runs share one, and the whole tree is
// removed when the run ends, success or failure.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Workspace is the temporary working directory for a single pipeline run.
// All acquired and extracted media lives under Dir until Cleanup.
type Workspace struct {
	// RunID uniquely identifies the run this workspace belongs to.
	RunID string

	// Dir is the root of the workspace tree.
	Dir string
}

// NewWorkspace creates a fresh working directory under baseDir (or the
// system temp dir when baseDir is empty), named after a new run ID.
func NewWorkspace(baseDir string) (*Workspace, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	runID := uuid.NewString()
	dir := filepath.Join(baseDir, "hookbrief-"+runID)
	for _, sub := range []string{dir, filepath.Join(dir, "frames"), filepath.Join(dir, "hook_frames")} {
		if err := os.MkdirAll(sub, 0o750); err != nil {
			return nil, fmt.Errorf("create workspace directory: %w", err)
		}
	}
	log.Debug().Str("runId", runID).Str("dir", dir).Msg("Workspace created")
	return &Workspace{RunID: runID, Dir: dir}, nil
}

// VideoPath is where the acquired source video is written.
func (w *Workspace) VideoPath() string {
	return filepath.Join(w.Dir, "video.mp4")
}

// FramesDir holds the uniform-interval frame samples.
func (w *Workspace) FramesDir() string {
	return filepath.Join(w.Dir, "frames")
}

// HookFramesDir holds the dense opening-window frame samples.
func (w *Workspace) HookFramesDir() string {
	return filepath.Join(w.Dir, "hook_frames")
}

// Cleanup removes the workspace tree recursively. Idempotent: removing an
// already-gone directory is not an error.
func (w *Workspace) Cleanup() {
	if err := os.RemoveAll(w.Dir); err != nil {
		log.Warn().Err(err).Str("dir", w.Dir).Msg("Failed to remove workspace")
		return
	}
	log.Debug().Str("dir", w.Dir).Msg("Workspace removed")
}
