// Package cli implements the webidl command.
package cli

import (
	"context"
	goflag "flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/funvibe/webidl/internal/config"
	"github.com/funvibe/webidl/internal/depcache"
	"github.com/funvibe/webidl/internal/export"
	"github.com/funvibe/webidl/internal/idl"
	"github.com/funvibe/webidl/internal/parser"
	"github.com/funvibe/webidl/internal/pipeline"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type options struct {
	configPath string
	format     string
	out        string
	cache      string
	changed    []string
	verbose    int
	deps       bool
}

// Run executes the command with args (without the program name) and
// returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := pflag.NewFlagSet("webidl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.configPath, "config", "c", "", "project file (default: search for webidl.yaml)")
	fs.StringVarP(&opts.format, "format", "f", "", "output format: summary, yaml, proto, descriptor, deps")
	fs.StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	fs.StringVar(&opts.cache, "cache", "", "sqlite dependency cache")
	fs.StringSliceVar(&opts.changed, "changed", nil, "print definitions of the last cached run that depend on these files")
	fs.IntVar(&opts.verbose, "verbose", 0, "log verbosity (same as glog -v, logging to stderr)")
	fs.BoolVar(&opts.deps, "with-deps", false, "include dependency files in yaml output")
	fs.AddGoFlagSet(goflag.CommandLine)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: webidl [flags] [file.webidl...]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return ExitOK
		}
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}
	if opts.verbose > 0 {
		goflag.Set("logtostderr", "true")
		goflag.Set("v", strconv.Itoa(opts.verbose))
	}
	defer glog.Flush()

	if err := run(ctx, opts, fs.Args(), stdout); err != nil {
		printError(stderr, err)
		return ExitError
	}
	return ExitOK
}

func run(ctx context.Context, opts options, inputs []string, stdout io.Writer) error {
	proj, err := loadProject(opts.configPath, len(inputs) == 0)
	if err != nil {
		return err
	}
	if proj != nil {
		if len(inputs) == 0 {
			if inputs, err = proj.ResolveInputs(); err != nil {
				return err
			}
		}
		if opts.format == "" {
			opts.format = proj.Output.Format
		}
		if opts.out == "" {
			opts.out = proj.Output.Path
		}
		if opts.cache == "" {
			opts.cache = proj.Cache
		}
	} else {
		proj = &config.Project{Output: config.Output{Format: config.FormatSummary}}
		proj.Proto = config.Proto{Package: config.DefaultProtoPackage, File: config.DefaultProtoPackage + ".proto"}
	}
	if opts.format == "" {
		opts.format = config.FormatSummary
	}
	if err := config.ValidateFormat(opts.format); err != nil {
		return err
	}

	var cache *depcache.Cache
	if opts.cache != "" {
		if cache, err = depcache.Open(ctx, opts.cache); err != nil {
			return err
		}
		defer cache.Close()
	}
	if len(opts.changed) > 0 {
		if cache == nil {
			return fmt.Errorf("--changed needs a cache")
		}
		names, err := cache.Affected(ctx, opts.changed)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no input files")
	}

	stages := []pipeline.Processor{
		pipeline.LoadProcessor{},
		&parser.ParserProcessor{},
		pipeline.DepsProcessor{},
	}
	if cache != nil {
		stages = append(stages, &depcache.RecordProcessor{Cache: cache})
	}
	result, err := runPipeline(pipeline.New(stages...), pipeline.NewContext(ctx, depcache.NewRunID(), inputs...))
	if err != nil {
		return err
	}
	glog.V(1).Infof("run %s: %d definitions", result.RunID, len(result.Definitions))

	w := stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}
	return write(w, opts, proj, result)
}

func runPipeline(p *pipeline.Pipeline, ctx *pipeline.PipelineContext) (out *pipeline.PipelineContext, err error) {
	defer func() {
		if r := recover(); r != nil {
			ae, ok := r.(*idl.AssertionError)
			if !ok {
				panic(r)
			}
			err = ae
		}
	}()
	out = p.Run(ctx)
	return out, out.Err
}

func loadProject(path string, search bool) (*config.Project, error) {
	if path == "" && search {
		found, err := config.FindProject(".")
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path == "" {
		return nil, nil
	}
	glog.V(1).Infof("using project %s", path)
	return config.LoadProject(path)
}

func write(w io.Writer, opts options, proj *config.Project, result *pipeline.PipelineContext) error {
	protoOpts := export.ProtoOptions{
		File:      proj.Proto.File,
		Package:   proj.Proto.Package,
		GoPackage: proj.Proto.GoPackage,
	}
	switch opts.format {
	case config.FormatYAML:
		return export.WriteYAML(w, result.Definitions, opts.deps)
	case config.FormatProto:
		return export.WriteProto(w, result.Definitions, protoOpts)
	case config.FormatDescriptor:
		return export.WriteDescriptorSet(w, result.Definitions, protoOpts)
	case config.FormatDeps:
		for _, def := range result.Definitions {
			name := pipeline.DefinitionName(def)
			for _, file := range result.Deps[name] {
				if _, err := fmt.Fprintf(w, "%s\t%s\n", name, file); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return export.WriteSummary(w, result.Definitions)
}

func printError(w io.Writer, err error) {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		fmt.Fprintf(w, "\x1b[31m%s\x1b[0m\n", err)
		return
	}
	fmt.Fprintln(w, err)
}
