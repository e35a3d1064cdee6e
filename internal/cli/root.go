package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-loader-mcp/internal/cache"
	"github.com/ironsheep/image-loader-mcp/internal/config"
	"github.com/ironsheep/image-loader-mcp/internal/loader"
	"github.com/ironsheep/image-loader-mcp/internal/transform"
)

var (
	version = "dev"     // semantic version (e.g., "v1.2.3")
	commit  = "unknown" // git commit SHA
	date    = "unknown" // build timestamp
)

// SetVersion sets the version information displayed by --version.
// It is called by main with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// app carries state shared by all commands once the root pre-run has loaded
// the configuration.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *log.Logger
}

// Execute runs the CLI and returns an error if any command fails.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "image-loader-mcp",
		Short: "Content-addressed image loading and transformation over MCP",
		Long: `image-loader-mcp decodes local images, applies aspect-ratio-aware transforms
(crop to center, fit to center, scale to fit, rotation, color filters) and
caches the results under SHA-256 keys. Without a subcommand it serves the MCP
protocol on stdin/stdout.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("image-loader-mcp %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: standard locations)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newKeyCmd(a))
	root.AddCommand(newTransformCmd(a))

	return root
}

func (a *app) init() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		if _, statErr := os.Stat(a.configPath); statErr != nil {
			return fmt.Errorf("config: %w", statErr)
		}
		cfg, err = config.LoadFrom(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := parseLevel(cfg.LogLevel)
	if a.verbose {
		level = log.DebugLevel
	}
	a.logger = newLogger(os.Stderr, level)
	a.logger.Debug("configuration loaded",
		"backend", cfg.Cache.Backend, "filter", cfg.Transform.Filter, "budget", cfg.BudgetString())
	return nil
}

// openStore builds the configured cache backend.
func (a *app) openStore(ctx context.Context) (cache.Store, error) {
	var (
		store cache.Store
		err   error
	)
	switch a.cfg.Cache.Backend {
	case config.BackendFile:
		store, err = cache.NewFileStore(a.cfg.Cache.Dir, a.logger)
	case config.BackendRedis:
		store, err = cache.DialRedis(ctx, a.cfg.Cache.RedisAddr, a.cfg.Cache.RedisPrefix)
	default:
		return cache.NewMemoryStore(), nil
	}
	if err != nil {
		return nil, err
	}
	if a.cfg.Cache.Tiered {
		return cache.NewLayered(cache.NewMemoryStore(), store), nil
	}
	return store, nil
}

// newLoader wires the engine and store from the configuration. The caller
// must close the returned store.
func (a *app) newLoader(ctx context.Context) (*loader.Loader, cache.Store, error) {
	scaler, err := transform.ScalerByName(a.cfg.Transform.Filter)
	if err != nil {
		return nil, nil, err
	}
	engine := transform.New(
		transform.WithScaler(scaler),
		transform.WithBudget(transform.NewBudget(a.cfg.Transform.BudgetBytes)),
		transform.WithLogger(a.logger),
	)

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	l := loader.New(store,
		loader.WithEngine(engine),
		loader.WithDensity(a.cfg.DefaultDensity),
		loader.WithLogger(a.logger),
	)
	return l, store, nil
}
