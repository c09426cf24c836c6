package pipeline

import (
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/funvibe/webidl/internal/idl"
)

// LoadProcessor reads Paths into Sources.
type LoadProcessor struct{}

func (LoadProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if len(ctx.Sources) > 0 {
		return ctx
	}
	for _, path := range ctx.Paths {
		data, err := os.ReadFile(path)
		if err != nil {
			ctx.Err = fmt.Errorf("reading %s: %w", path, err)
			return ctx
		}
		ctx.Sources = append(ctx.Sources, Source{Path: path, Text: string(data)})
	}
	glog.V(1).Infof("run %s: loaded %d sources", ctx.RunID, len(ctx.Sources))
	return ctx
}

// DepsProcessor records, per named definition, the files it depends on.
type DepsProcessor struct{}

func (DepsProcessor) Process(ctx *PipelineContext) *PipelineContext {
	ctx.Deps = make(map[string][]string, len(ctx.Definitions))
	for _, def := range ctx.Definitions {
		name := DefinitionName(def)
		if name == "" {
			continue
		}
		ctx.Deps[name] = idl.Deps(def)
		glog.V(2).Infof("%s depends on %v", name, ctx.Deps[name])
	}
	return ctx
}

// DefinitionName is the global name of def, or "" for anonymous
// productions such as implements statements.
func DefinitionName(def idl.Definition) string {
	if obj, ok := def.(idl.Object); ok {
		return obj.Identifier().Name
	}
	return ""
}
