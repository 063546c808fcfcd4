package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"usersearch/internal/avatar"
	"usersearch/internal/config"
	"usersearch/internal/domain"
	"usersearch/internal/eventbus"
	"usersearch/internal/lookup"
	"usersearch/internal/metrics"
	"usersearch/internal/search"
	"usersearch/internal/ui"
	"usersearch/internal/ui/viewmodels"
	"usersearch/internal/ui/views"
)

type options struct {
	configPath  string
	user        string
	apiURL      string
	timeout     time.Duration
	noAvatar    bool
	logFile     string
	metricsAddr string
}

func main() {
	var opts options
	pflag.StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "Path to the config file")
	pflag.StringVarP(&opts.user, "user", "u", "", "Look up a single user, print the result and exit")
	pflag.StringVar(&opts.apiURL, "api-url", "", "API root of the user directory")
	pflag.DurationVar(&opts.timeout, "timeout", 0, "Lookup timeout (overrides the config file)")
	pflag.BoolVar(&opts.noAvatar, "no-avatar", false, "Do not download avatar images")
	pflag.StringVar(&opts.logFile, "log-file", "", "Log file (overrides the config file)")
	pflag.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	pflag.Parse()

	if opts.user == "" && pflag.NArg() > 0 {
		opts.user = pflag.Arg(0)
	}

	os.Exit(run(opts))
}

func run(opts options) int {
	cfg, fresh, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 2
	}
	cfg.ApplyEnv(os.Getenv)
	if opts.apiURL != "" {
		cfg.API.BaseURL = opts.apiURL
	}
	if opts.timeout > 0 {
		cfg.API.Timeout = config.Duration{Duration: opts.timeout}
	}
	if opts.noAvatar {
		cfg.UI.ShowAvatar = false
	}
	if opts.logFile != "" {
		cfg.LogFile = opts.logFile
	}

	log, flush, err := newLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open log file: %v\n", err)
		log, flush = logr.Discard(), func() {}
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := eventbus.New(log)
	defer bus.Close()
	cfgSvc := config.NewConfigServiceWithBus(opts.configPath, bus)

	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		detach := metrics.NewLookupMetrics(reg).Attach(bus)
		defer detach()
		srv := metrics.StartServer(reg, opts.metricsAddr, log.WithName("metrics"))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	client, err := lookup.NewGitHubClient(
		lookup.NewHTTPClient(ctx, cfg.API.Token),
		lookup.WithBaseURL(cfg.API.BaseURL),
		lookup.WithLogger(log.WithName("lookup")),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating lookup client: %v\n", err)
		return 2
	}

	ctrl := search.New(client,
		search.WithTimeout(cfg.API.Timeout.Duration),
		search.WithClearQueryOnFound(cfg.Search.ClearQueryOnFound),
		search.WithEventBus(bus),
		search.WithLogger(log),
	)

	if opts.user != "" {
		if fresh {
			writeDefaults(cfgSvc, log)
		}
		return lookupOnce(ctx, ctrl, opts.user, os.Stdout)
	}
	return runUI(ctx, ctrl, bus, cfg, log, func() {
		if fresh {
			writeDefaults(cfgSvc, log)
		}
	})
}

// lookupOnce prints the result for a single user. The exit code is 0 when
// the user was found and 1 otherwise.
func lookupOnce(ctx context.Context, ctrl *search.Controller, user string, out io.Writer) int {
	ctrl.SetQuery(user)
	if err := ctrl.Lookup(ctx); err != nil {
		fmt.Fprintf(out, "%s\n", ctrl.Notice())
		return 2
	}

	fmt.Fprintln(out, views.RenderPlain(viewmodels.Project(ctrl.State())))
	if err := ctrl.LastError(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if ctrl.State().Kind != domain.ViewFound {
		return 1
	}
	return 0
}

// runUI runs the interactive program. beforeRun is called once the bus
// events are forwarded to the program.
func runUI(ctx context.Context, ctrl *search.Controller, bus eventbus.EventBus, cfg *config.Config, log logr.Logger, beforeRun func()) int {
	uiOpts := ui.Options{
		AvatarWidth: cfg.UI.AvatarWidth,
		ReadyMarker: os.Getenv("USERSEARCH_E2E_TEST") == "1",
		Log:         log,
	}
	if cfg.UI.ShowAvatar {
		// plain client: avatar hosts must not receive the API token
		uiOpts.Avatars = avatar.NewFetcher(&http.Client{Timeout: cfg.API.Timeout.Duration})
	}

	model := ui.NewModel(ctx, ctrl, uiOpts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	forward := func(e eventbus.DomainEvent) {
		p.Send(ui.EventMsg{Event: e})
	}
	bus.Subscribe(eventbus.EventLookupFailed, forward)
	bus.Subscribe(eventbus.EventLookupDiscarded, forward)
	bus.Subscribe(eventbus.EventConfigSaved, forward)
	beforeRun()

	log.Info("starting UI")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Error(err, "error running program")
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return 1
	}
	log.Info("UI exited normally")
	return 0
}

// loadConfig reads the config file. fresh reports that there is none yet
// and the defaults were returned. The file is read before the logger and
// the bus exist, since it names the log file.
func loadConfig(path string) (cfg *config.Config, fresh bool, err error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.DefaultConfig(), true, nil
	}
	cfg, err = config.NewConfigServiceAt(path).Load()
	return cfg, false, err
}

// writeDefaults persists the default config on first run. Env and flag
// overrides are not written, so a token never lands in the file this way.
func writeDefaults(svc config.ConfigService, log logr.Logger) {
	if err := svc.Save(config.DefaultConfig()); err != nil {
		// still usable, just not persisted
		log.Error(err, "could not write default config", "path", svc.Path())
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return
	}
	log.Info("wrote default config", "path", svc.Path())
}

// newLogger writes JSON logs to path; the terminal belongs to the UI
func newLogger(path string) (logr.Logger, func(), error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	if os.Getenv("USERSEARCH_DEBUG") != "" {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zl, err := zc.Build()
	if err != nil {
		return logr.Discard(), func() {}, err
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}
