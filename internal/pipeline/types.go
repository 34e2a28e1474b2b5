package pipeline

import "time"

// PipelineConfig holds configuration for a prediction run
type PipelineConfig struct {
	WorkerCount int              // Number of products forecast concurrently
	DateLayout  string           // Layout of prediction_date in the output
	Now         func() time.Time // Stamps prediction_date; nil uses time.Now
}

// DefaultPipelineConfig returns sensible defaults
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		WorkerCount: 4,
		DateLayout:  time.RFC3339Nano,
		Now:         time.Now,
	}
}

// RunStats summarizes a finished run for logging
type RunStats struct {
	Products  int
	Sales     int
	ColdStart int
	Average   int
	Model     int
	Fallbacks int
	Duration  time.Duration
}
