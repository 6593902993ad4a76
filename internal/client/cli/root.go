package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/finsync/internal/client/iocli"
	"github.com/iudanet/finsync/internal/config"
	"github.com/iudanet/finsync/internal/logging"
)

// Builder creates the command runtime from the final configuration.
// The returned function releases it.
type Builder func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Cli, func() error, error)

// globalFlags are the persistent flags of the root command
type globalFlags struct {
	configPath string
	envFile    string
	apiURL     string
	tokenURL   string
	clientID   string
	dbPath     string
	driver     string
	logLevel   string
	logFormat  string
	timeout    time.Duration
	cacheSize  int64
}

// runner строит Cli для каждой команды и освобождает его после выполнения
type runner struct {
	io    iocli.IO
	build Builder
	flags globalFlags
}

// NewRootCommand builds the finsync command tree
func NewRootCommand(stdio iocli.IO, build Builder, version string) *cobra.Command {
	r := &runner{io: stdio, build: build}

	root := &cobra.Command{
		Use:           "finsync",
		Short:         "Mirror a financial API into a local store",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdio)

	pf := root.PersistentFlags()
	pf.StringVar(&r.flags.configPath, "config", "finsync.yaml", "path to the YAML configuration file")
	pf.StringVar(&r.flags.envFile, "env-file", ".env", "path to the .env file")
	pf.StringVar(&r.flags.apiURL, "api-url", "", "resource API base URL")
	pf.StringVar(&r.flags.tokenURL, "token-url", "", "OAuth2 token endpoint")
	pf.StringVar(&r.flags.clientID, "client-id", "", "OAuth2 client_id")
	pf.StringVar(&r.flags.dbPath, "db", "", "path to the local database")
	pf.StringVar(&r.flags.driver, "driver", "", "local storage driver: bolt or sqlite")
	pf.StringVar(&r.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&r.flags.logFormat, "log-format", "", "log format: text or json")
	pf.DurationVar(&r.flags.timeout, "timeout", 0, "timeout of one HTTP attempt")
	pf.Int64Var(&r.flags.cacheSize, "cache-size", 0, "read cache capacity, 0 disables the cache")

	root.AddCommand(
		r.loginCommand(),
		r.logoutCommand(),
		r.statusCommand(),
		r.syncCommand(),
		r.listCommand(),
		r.getCommand(),
		r.totalsCommand(),
		r.hideCommand(),
		r.reviewCommand(),
		r.deleteCommand(),
	)
	return root
}

// loadConfig собирает конфигурацию: файл, окружение, затем явно заданные флаги
func (r *runner) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	cfg, err := config.Load(config.LoadOptions{
		ConfigPath:     r.flags.configPath,
		EnvFile:        r.flags.envFile,
		ConfigRequired: flags.Changed("config"),
	})
	if err != nil {
		return nil, err
	}

	if flags.Changed("api-url") {
		cfg.BaseURL = r.flags.apiURL
	}
	if flags.Changed("token-url") {
		cfg.TokenURL = r.flags.tokenURL
	}
	if flags.Changed("client-id") {
		cfg.ClientID = r.flags.clientID
	}
	if flags.Changed("db") {
		cfg.DBPath = r.flags.dbPath
	}
	if flags.Changed("driver") {
		cfg.Driver = r.flags.driver
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = r.flags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = r.flags.logFormat
	}
	if flags.Changed("timeout") {
		cfg.Timeout = r.flags.timeout
	}
	if flags.Changed("cache-size") {
		cfg.CacheSize = r.flags.cacheSize
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run оборачивает действие команды: загрузка конфигурации, сборка Cli, освобождение
func (r *runner) run(action func(ctx context.Context, c *Cli, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := r.loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		c, release, err := r.build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := release(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		return action(ctx, c, cmd, args)
	}
}
