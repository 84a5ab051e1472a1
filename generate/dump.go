package generate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/openactive/models-lib/config"
	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/fetch"
	"github.com/openactive/models-lib/logger"
	"github.com/openactive/models-lib/output"
	"github.com/openactive/models-lib/vocab"
)

// Dump file names
const (
	DumpNamespaces = "namespaces.json"
	DumpModels     = "models.json"
	DumpEnums      = "enums.json"
	DumpAll        = "all.json"
)

// snapshot is the shape of all.json.
type snapshot struct {
	Version    string                     `json:"version,omitempty"`
	Namespaces map[string]string          `json:"namespaces"`
	Models     map[string]*vocab.Model    `json:"models"`
	Enums      map[string]*vocab.EnumType `json:"enums"`
	Extensions []string                   `json:"extensions"`
}

// Dump writes the merged vocabulary of vctx to dir as JSON.
func Dump(vctx *vocab.Context, dir string) error {
	snap := snapshot{
		Version:    vctx.Version,
		Namespaces: vctx.Namespaces.Map(),
		Models:     vctx.Models,
		Enums:      vctx.Enums,
		Extensions: vctx.ExtensionOrder,
	}

	if err := os.MkdirAll(dir, output.DirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	for name, v := range map[string]any{
		DumpNamespaces: snap.Namespaces,
		DumpModels:     snap.Models,
		DumpEnums:      snap.Enums,
		DumpAll:        snap,
	} {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s", name)
		}
		if err := os.WriteFile(filepath.Join(dir, name), append(data, '\n'), output.FilePermissions); err != nil {
			return errors.Wrapf(err, "failed to write %s", name)
		}
	}
	return nil
}

// DumpOptions adjusts RunDump.
type DumpOptions struct {
	// Foundational merges the foundational vocabulary as an extension
	Foundational bool
	// Fetcher overrides the fetcher built from the configuration
	Fetcher fetch.Fetcher
}

// RunDump loads and merges the configured vocabulary and dumps it to dir.
func RunDump(ctx context.Context, cfg *config.Config, dir string, opts DumpOptions, log *zap.SugaredLogger) (*vocab.Context, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		client, err := fetch.New(cfg.FetchOptions(), log.Named("fetch"))
		if err != nil {
			return nil, err
		}
		fetcher = client
	}

	base, err := vocab.LoadBase(cfg.Vocabulary.Dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load base vocabulary")
	}
	vctx, err := BuildContext(ctx, cfg, base, fetcher, opts.Foundational, log)
	if err != nil {
		return nil, err
	}
	if err := Dump(vctx, dir); err != nil {
		return nil, err
	}
	log.Infow("Dumped vocabulary",
		logger.FieldFile, dir,
		logger.FieldModel, len(vctx.Models),
		logger.FieldEnum, len(vctx.Enums))
	return vctx, nil
}
