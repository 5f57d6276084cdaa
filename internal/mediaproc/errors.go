package mediaproc

import (
	"errors"
	"fmt"
)

// ErrNoAudioStream marks an ExtractionError caused by a source with no
// audio track. Callers treat this as recoverable: the transcription stage
// substitutes a "[No audio]" marker instead of failing the run.
var ErrNoAudioStream = errors.New("no audio stream")

// AcquisitionError indicates the source video could not be fetched or
// copied into the working directory. Always fatal for the run.
type AcquisitionError struct {
	Source string
	Err    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// ProbeError indicates the file has no decodable video stream or ffprobe
// itself failed. Always fatal for the run.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// ExtractionError indicates the audio track could not be produced.
// Check errors.Is(err, ErrNoAudioStream) for the recoverable no-audio case.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract audio from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// SamplingError indicates the file is fundamentally undecodable for frame
// extraction. Individual unsampleable timestamps are skipped with a
// warning and never produce this error.
type SamplingError struct {
	Path string
	Err  error
}

func (e *SamplingError) Error() string {
	return fmt.Sprintf("sample frames from %s: %v", e.Path, e.Err)
}

func (e *SamplingError) Unwrap() error { return e.Err }
