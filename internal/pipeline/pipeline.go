package pipeline

import "github.com/golang/glog"

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Errors are fatal: the first stage that sets
// Err, or a cancelled Context, ends the run.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for i, processor := range p.processors {
		if err := ctx.Context.Err(); err != nil {
			ctx.Err = err
			return ctx
		}
		ctx = processor.Process(ctx)
		if ctx.Err != nil {
			glog.V(1).Infof("run %s: stage %d failed", ctx.RunID, i)
			return ctx
		}
	}
	return ctx
}
