package pipeline

import (
	"context"

	"github.com/funvibe/webidl/internal/idl"
)

// Source is one IDL input.
type Source struct {
	Path string
	Text string
}

// PipelineContext carries the state of one run through the stages.
type PipelineContext struct {
	Context context.Context

	// RunID identifies the run in logs and in the dependency cache.
	RunID string

	// Paths are read into Sources by the LoadProcessor when Sources is empty.
	Paths   []string
	Sources []Source

	// Definitions is the finished, validated output of the parser.
	Definitions []idl.Definition

	// Deps maps a definition name to the files it was built from.
	Deps map[string][]string

	// Err is the first error any stage hit; later stages are skipped.
	Err error
}

// NewContext returns a context for the given input paths.
func NewContext(ctx context.Context, runID string, paths ...string) *PipelineContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &PipelineContext{Context: ctx, RunID: runID, Paths: paths}
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a function to a Processor.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }
