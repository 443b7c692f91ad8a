// Command drinks is a terminal client for the drink catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/drinkbook/backend/internal/catalog"
	"github.com/pageza/drinkbook/backend/internal/local"
	"github.com/pageza/drinkbook/backend/internal/logging"
	"github.com/pageza/drinkbook/backend/internal/remote"
)

// session is what every subcommand runs against.
type session struct {
	configPath string
	cfg        cliConfig
	verbose    bool
	timeout    time.Duration

	logger *zap.Logger
	store  *remote.HTTPStore
	local  local.Store
	closer func()
	app    *catalog.App
	out    *renderer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	s := &session{}
	var (
		apiURL   string
		token    string
		store    string
		dataDir  string
		redisURL string
		scheme   string
	)

	root := &cobra.Command{
		Use:           "drinks",
		Short:         "Browse and manage the drink catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(s.configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("api-url") {
				cfg.APIURL = apiURL
			}
			if flags.Changed("token") {
				cfg.Token = token
			}
			if flags.Changed("store") {
				cfg.LocalStore = store
			}
			if flags.Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if flags.Changed("redis-url") {
				cfg.RedisURL = redisURL
			}
			if flags.Changed("scheme") {
				cfg.ColorScheme = scheme
			}
			s.cfg = cfg
			return s.open(cmd.Context(), stdout)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			s.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&s.configPath, "config", defaultConfigPath(), "Config file")
	pf.StringVar(&apiURL, "api-url", "", "Catalog API base URL")
	pf.StringVar(&token, "token", "", "Bearer token for writes")
	pf.StringVar(&store, "store", "", "Local store: file, redis or memory")
	pf.StringVar(&dataDir, "data-dir", "", "Directory for the file store")
	pf.StringVar(&redisURL, "redis-url", "", "Redis URL for the redis store")
	pf.StringVar(&scheme, "scheme", "", "Color scheme when none is saved: light, dark or auto")
	pf.BoolVarP(&s.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.DurationVar(&s.timeout, "timeout", 15*time.Second, "Per-request timeout")

	root.AddCommand(
		newListCmd(s),
		newShowCmd(s),
		newAddCmd(s),
		newEditCmd(s),
		newDeleteCmd(s),
		newFavCmd(s),
		newFavoritesCmd(s),
		newThemeCmd(s),
		newCategoriesCmd(s),
		newLoginCmd(s),
		newWatchCmd(s),
	)
	return root
}

func (s *session) open(ctx context.Context, stdout io.Writer) error {
	logger, err := logging.NewCLI(s.verbose)
	if err != nil {
		return err
	}
	s.logger = logger

	ls, closer, err := openLocal(s.cfg, s.configPath, logger)
	if err != nil {
		return err
	}
	s.local = ls
	s.closer = closer

	s.store = remote.NewHTTPStore(s.cfg.APIURL, s.cfg.Token)
	s.app = catalog.New(ctx, catalog.Deps{
		Remote:   s.store,
		Local:    ls,
		OSScheme: osScheme(s.cfg.ColorScheme),
		Logger:   logger,
	})
	s.out = newRenderer(stdout, s.app.Theme.Palette())
	return nil
}

func (s *session) close() {
	if s.app != nil {
		s.app.Close()
	}
	if s.closer != nil {
		s.closer()
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}
}

// requestCtx bounds one remote call.
func (s *session) requestCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func openLocal(cfg cliConfig, configPath string, logger *zap.Logger) (local.Store, func(), error) {
	switch cfg.LocalStore {
	case "", storeFile:
		fs, err := local.NewFileStore(cfg.dataDir(configPath), logger.Named("local"))
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	case storeRedis:
		if cfg.RedisURL == "" {
			return nil, nil, errors.New("redis store needs redis_url")
		}
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis_url: %w", err)
		}
		client := redis.NewClient(opts)
		return local.NewRedisStore(client), func() { _ = client.Close() }, nil
	case storeMemory:
		return local.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown local store %q", cfg.LocalStore)
	}
}

func osScheme(setting string) catalog.ColorScheme {
	switch strings.ToLower(setting) {
	case "dark":
		return catalog.SchemeDark
	case "light":
		return catalog.SchemeLight
	case "auto":
		if lipgloss.HasDarkBackground() {
			return catalog.SchemeDark
		}
		return catalog.SchemeLight
	default:
		return catalog.SchemeUnknown
	}
}

// watchURL turns the API base URL into the websocket feed URL.
func watchURL(apiURL string) string {
	u := strings.TrimRight(apiURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}
