// Package generate runs the model generation pipeline for every configured
// target:
//
//	load base -> fetch extensions -> merge -> build trees
//	  -> mark implicit referencing -> render -> write or check
//
// Each target gets its own vocab.Context, because targets that generate the
// foundational vocabulary merge it as an extension and the others do not.
// The base vocabulary is loaded once per run and extension documents are
// shared through the fetcher's cache.
package generate

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openactive/models-lib/config"
	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/fetch"
	"github.com/openactive/models-lib/logger"
	"github.com/openactive/models-lib/output"
	"github.com/openactive/models-lib/render"
	"github.com/openactive/models-lib/render/dotnet"
	"github.com/openactive/models-lib/render/golang"
	"github.com/openactive/models-lib/render/typescript"
	"github.com/openactive/models-lib/resolve"
	"github.com/openactive/models-lib/typedesc"
	"github.com/openactive/models-lib/vocab"
)

// NewRenderer returns the renderer registered under a target name, with the
// inheritance policy from output.inheritance applied.
func NewRenderer(name string, cfg *config.Config) (render.Renderer, error) {
	var r render.Renderer
	switch name {
	case "typescript":
		r = typescript.New()
	case "dotnet":
		r = dotnet.New()
	case "go":
		r = golang.New(cfg.Output.GoPackage)
	default:
		return nil, errors.WithHintf(errors.Newf("unknown target %q", name),
			"known targets: %v", config.KnownTargets)
	}

	if s, ok := cfg.Output.Inheritance[name]; ok {
		policy, err := resolve.ParsePolicy(s)
		if err != nil {
			return nil, errors.Wrapf(err, "output.inheritance.%s", name)
		}
		r = policyRenderer{Renderer: r, policy: policy}
	}
	return r, nil
}

// policyRenderer overrides the inheritance policy of a renderer.
type policyRenderer struct {
	render.Renderer
	policy resolve.Policy
}

func (r policyRenderer) Policy() resolve.Policy { return r.policy }

// Options adjusts a run. Zero values fall back to the configuration.
type Options struct {
	// Targets overrides output.targets
	Targets []string
	// OutDir overrides output.dir
	OutDir string
	// Check compares with the existing output instead of writing it
	Check bool
	// Clean removes each target directory before writing
	Clean bool
	// Fetcher overrides the HTTP/file fetcher built from the configuration
	Fetcher fetch.Fetcher
	// Progress receives user-facing progress; nil discards it
	Progress ProgressEmitter
}

// TargetResult is the outcome of one target.
type TargetResult struct {
	Target string
	Dir    string
	Files  int
	// Check is set in check mode
	Check *output.CheckResult
}

// Result is the outcome of a run.
type Result struct {
	RunID         string
	SourceVersion string
	Targets       []TargetResult
}

// UpToDate reports whether every checked target matched its output tree.
func (r *Result) UpToDate() bool {
	for _, t := range r.Targets {
		if t.Check != nil && !t.Check.UpToDate {
			return false
		}
	}
	return true
}

// Run generates every target of cfg.
func Run(ctx context.Context, cfg *config.Config, opts Options, log *zap.SugaredLogger) (*Result, error) {
	progress := opts.Progress
	if progress == nil {
		progress = nopEmitter{}
	}

	runID := uuid.New().String()
	ctx = logger.WithRunID(ctx, runID)
	log = contextLogger(ctx, log)
	start := time.Now()

	targets := opts.Targets
	if len(targets) == 0 {
		targets = cfg.Output.Targets
	}
	outDir := opts.OutDir
	if outDir == "" {
		outDir = cfg.Output.Dir
	}

	renderers := make([]render.Renderer, 0, len(targets))
	for _, name := range targets {
		r, err := NewRenderer(name, cfg)
		if err != nil {
			return nil, err
		}
		renderers = append(renderers, r)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		client, err := fetch.New(cfg.FetchOptions(), log.Named("fetch"))
		if err != nil {
			return nil, err
		}
		fetcher = client
	}

	progress.EmitStage("load", cfg.Vocabulary.Dir)
	base, err := vocab.LoadBase(cfg.Vocabulary.Dir)
	if err != nil {
		progress.EmitError("load", err)
		return nil, errors.Wrap(err, "failed to load base vocabulary")
	}
	log.Infow("Loaded base vocabulary",
		logger.FieldModel, len(base.Models),
		logger.FieldEnum, len(base.Enums))

	result := &Result{RunID: runID}
	if cfg.Output.StampVersion {
		version, err := output.SourceVersion(cfg.Vocabulary.Dir)
		if err != nil {
			log.Warnw("Could not determine source version", logger.FieldError, err)
		} else {
			result.SourceVersion = version
		}
	}

	for _, r := range renderers {
		tr, err := runTarget(ctx, cfg, base, fetcher, r, outDir, result.SourceVersion, opts, progress, log)
		if err != nil {
			progress.EmitError(r.Language(), err)
			return nil, errors.Wrapf(err, "target %s", r.Language())
		}
		progress.EmitTarget(tr)
		result.Targets = append(result.Targets, tr)
	}

	progress.EmitComplete(map[string]interface{}{
		"run_id":      runID,
		"targets":     len(result.Targets),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return result, nil
}

// contextLogger attaches the run fields carried by ctx to log. A nil log
// falls back to the process logger.
func contextLogger(ctx context.Context, log *zap.SugaredLogger) *zap.SugaredLogger {
	if log == nil {
		return logger.LoggerFromContext(ctx)
	}
	return log.With(logger.FieldsFromContext(ctx)...)
}

func runTarget(
	ctx context.Context,
	cfg *config.Config,
	base *vocab.Base,
	fetcher fetch.Fetcher,
	r render.Renderer,
	outDir, sourceVersion string,
	opts Options,
	progress ProgressEmitter,
	log *zap.SugaredLogger,
) (TargetResult, error) {
	log = log.With(logger.FieldTarget, r.Language())

	progress.EmitStage("merge", r.Language())
	vctx, err := BuildContext(ctx, cfg, base, fetcher, r.GeneratesFoundational(), log)
	if err != nil {
		return TargetResult{}, err
	}
	resolve.MarkImplicitReferencing(vctx, typedesc.NewResolver(vctx, log, r.TypeOptions()...), log)

	progress.EmitStage("render", r.Language())
	files, err := render.Generate(vctx, r, render.Options{SourceVersion: sourceVersion}, log)
	if err != nil {
		return TargetResult{}, err
	}

	dir := filepath.Join(outDir, r.Language())
	tr := TargetResult{Target: r.Language(), Dir: dir, Files: len(files)}
	if opts.Check {
		check, err := output.Compare(files, dir)
		if err != nil {
			return TargetResult{}, err
		}
		tr.Check = check
		return tr, nil
	}

	if err := output.NewWriter(dir, opts.Clean, log).Write(files); err != nil {
		return TargetResult{}, err
	}
	return tr, nil
}

// BuildContext seeds a context with base, fetches and merges every configured
// extension and builds the inheritance trees. With foundational set the
// foundational vocabulary is merged as an extension too.
func BuildContext(
	ctx context.Context,
	cfg *config.Config,
	base *vocab.Base,
	fetcher fetch.Fetcher,
	foundational bool,
	log *zap.SugaredLogger,
) (*vocab.Context, error) {
	vctx := vocab.NewContext(base, cfg.VocabOptions(), log)

	exts := cfg.NewExtensions()
	if foundational {
		if ext := cfg.FoundationalExtension(); ext != nil {
			exts = append(exts, ext)
		}
	}
	for _, ext := range exts {
		vctx.AddExtension(ext)
	}

	if err := fetch.FetchAll(ctx, fetcher, exts); err != nil {
		return nil, errors.Mark(err, errors.ErrFetch)
	}
	if err := vctx.Merge(); err != nil {
		return nil, err
	}
	vctx.BuildTrees()
	return vctx, nil
}
