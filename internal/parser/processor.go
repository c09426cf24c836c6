package parser

import (
	"github.com/golang/glog"

	"github.com/funvibe/webidl/internal/pipeline"
)

// ParserProcessor parses every source of the run into one global scope and
// finishes it.
type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	p, err := New()
	if err != nil {
		ctx.Err = err
		return ctx
	}
	for _, src := range ctx.Sources {
		if err := ctx.Context.Err(); err != nil {
			ctx.Err = err
			return ctx
		}
		glog.V(1).Infof("run %s: parsing %s", ctx.RunID, src.Path)
		if err := p.Parse(src.Text, src.Path); err != nil {
			ctx.Err = err
			return ctx
		}
	}
	defs, err := p.Finish()
	if err != nil {
		ctx.Err = err
		return ctx
	}
	ctx.Definitions = defs
	return ctx
}
