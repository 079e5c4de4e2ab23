package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Rokon-556/recipe-gen/internal/logger"
	"github.com/Rokon-556/recipe-gen/pkg/config"
	"github.com/Rokon-556/recipe-gen/pkg/download"
	"github.com/Rokon-556/recipe-gen/pkg/export"
	"github.com/Rokon-556/recipe-gen/pkg/hooks"
	"github.com/Rokon-556/recipe-gen/pkg/recipe"
	"github.com/Rokon-556/recipe-gen/pkg/save"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	OutputFormat *string
)

// hooksDirName is the directory next to the config file scanned for
// <hook-type>.tengo scripts.
const hooksDirName = "hooks"

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// loadConfig loads the configuration, applies the global flags and
// initializes the logger from the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.OutputFormat = *OutputFormat
	}
	if Verbose != nil && *Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.InitLogger(cfg.LogLevel, logger.OutputFormat(cfg.OutputFormat))
	return cfg, nil
}

func newFetcher(cfg *config.Config) (*download.Manager, error) {
	var opts []download.Option
	if a := cfg.FetchAuthenticator(); a != nil {
		opts = append(opts, download.WithAuthenticator(a))
	}
	manager, err := download.NewManager(cfg.FetchPolicy(), cfg.Fetch.UserAgent, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}
	return manager, nil
}

// newSaver returns the configured save target. A non-empty outDir always
// selects a local directory.
func newSaver(cfg *config.Config, outDir string) (save.Saver, error) {
	if outDir != "" {
		return save.NewDirSaver(outDir)
	}
	switch cfg.Storage.Type {
	case config.StorageS3:
		return save.NewObjectSaver(cfg.ObjectConfig())
	default:
		return save.NewDirSaver(cfg.Storage.Dir)
	}
}

func newExporter(cfg *config.Config, outDir string) (*export.Exporter, error) {
	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	saver, err := newSaver(cfg, outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create save target: %w", err)
	}

	exp := export.New(fetcher, saver, cfg.ExportOptions())
	exp.Hooks.OnEvent = func(e export.Event) {
		logger.Debug("Export event", logger.Fields{"export_id": e.ID, "phase": e.Phase, "step": e.Step, "msg": e.Msg})
	}
	return exp, nil
}

// newHookManager loads hook scripts from the hooks directory next to the
// config file, then the files named in the config, which take precedence.
func newHookManager(cfg *config.Config) (*hooks.DefaultHookManager, error) {
	manager := hooks.NewHookManager()

	if path := getConfigPath(); path != "" {
		if err := hooks.LoadHooksFromDir(manager, filepath.Join(filepath.Dir(path), hooksDirName)); err != nil {
			return nil, err
		}
	}
	if cfg.Hooks.PreExport != "" {
		if err := hooks.LoadHookFile(manager, hooks.PreExport, cfg.Hooks.PreExport); err != nil {
			return nil, err
		}
	}
	if cfg.Hooks.PostExport != "" {
		if err := hooks.LoadHookFile(manager, hooks.PostExport, cfg.Hooks.PostExport); err != nil {
			return nil, err
		}
	}
	return manager, nil
}

// attachHooks runs the pre-export and post-export scripts around every batch
// of exp.
func attachHooks(exp *export.Exporter, manager hooks.HookManager) {
	if manager.HasHook(hooks.PreExport) {
		exp.Hooks.BeforeBatch = func(ctx context.Context, exportID string, req export.Request) error {
			return manager.Execute(ctx, hooks.PreExport, hooks.HookContext{
				ExportID:   exportID,
				RecipeName: req.CollectionName,
				BrandName:  req.BrandName,
				ItemCount:  len(req.Items),
			})
		}
	}
	if manager.HasHook(hooks.PostExport) {
		exp.Hooks.AfterBatch = func(ctx context.Context, req export.Request, res export.BatchResult) error {
			return manager.Execute(ctx, hooks.PostExport, hooks.HookContext{
				ExportID:    res.ExportID,
				RecipeName:  req.CollectionName,
				BrandName:   req.BrandName,
				ItemCount:   len(req.Items),
				ArchiveName: res.ArchiveName,
				Location:    res.Location,
				Saved:       res.Saved,
				Failures:    res.Failures,
			})
		}
	}
}

func newRecipeClient(cfg *config.Config) (*recipe.Client, error) {
	client, err := recipe.NewClient(recipe.Config{
		BaseURL: cfg.RecipeService.BaseURL,
		APIKey:  cfg.RecipeService.APIKey,
		Timeout: cfg.RecipeService.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe service client: %w", err)
	}
	return client, nil
}
