package depcache

import (
	"github.com/funvibe/webidl/internal/pipeline"
)

// RecordProcessor stores the run's Deps in the cache.
type RecordProcessor struct {
	Cache *Cache
}

func (rp *RecordProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if rp.Cache == nil {
		return ctx
	}
	if err := rp.Cache.Record(ctx.Context, ctx.RunID, len(ctx.Sources), ctx.Deps); err != nil {
		ctx.Err = err
	}
	return ctx
}
