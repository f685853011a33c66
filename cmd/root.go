package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/sprs/sprs/internal/app"
	"github.com/sprs/sprs/internal/cachemanager"
	"github.com/sprs/sprs/internal/config"
	"github.com/sprs/sprs/internal/log"
	"github.com/sprs/sprs/internal/menu"
	"github.com/sprs/sprs/internal/patients/application"
	"github.com/sprs/sprs/internal/patients/domain"
	"github.com/sprs/sprs/internal/tracing"
	"github.com/sprs/sprs/internal/ui/styles"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply cannot land in a text input.
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const defaultConfigPath = ".sprs/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config

	closeLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "sprs",
	Short: "Simple Patient Record System",
	Long: `SPRS keeps an in-memory register of patients keyed by generated IDs (P-101, P-102, ...).
Run without arguments for the interactive menu, or use "sprs batch" to apply a script.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.sprs/config.yaml or ~/.config/sprs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (same as SPRS_DEBUG=1)")
	rootCmd.Flags().Bool("plain", false,
		"use numbered line prompts instead of the full-screen interface")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	loaded, err := loadConfig(viper.GetViper(), cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = loaded
}

// setDefaults registers every key so env overrides and Unmarshal see them
// even when the config file omits a section.
func setDefaults(v *viper.Viper) {
	defaults := config.Defaults()
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("ui.mode", defaults.UI.Mode)
	v.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	v.SetDefault("ui.show_activity", defaults.UI.ShowActivity)
	v.SetDefault("theme.highlight", defaults.Theme.Highlight)
	v.SetDefault("theme.subtle", defaults.Theme.Subtle)
	v.SetDefault("theme.error", defaults.Theme.Error)
	v.SetDefault("theme.success", defaults.Theme.Success)
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
}

// loadConfig reads configuration into v and returns the decoded result.
// Lookup order: explicit path, ./.sprs/config.yaml, ~/.config/sprs/config.yaml.
// When nothing is found a commented default file is written and read back.
func loadConfig(v *viper.Viper, path string) (config.Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("SPRS")
	v.AutomaticEnv()

	target := path
	switch {
	case path != "":
		v.SetConfigFile(path)
	case fileExists(defaultConfigPath):
		v.SetConfigFile(defaultConfigPath)
	default:
		target = defaultConfigPath
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "sprs"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			out, _ := decode(v)
			return out, fmt.Errorf("reading config %s: %w", v.ConfigFileUsed(), err)
		}
		if writeErr := config.WriteDefaultConfig(target); writeErr == nil {
			v.SetConfigFile(target)
			_ = v.ReadInConfig()
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (config.Config, error) {
	var out config.Config
	if err := v.Unmarshal(&out); err != nil {
		return config.Defaults(), fmt.Errorf("decoding config: %w", err)
	}
	return out, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	styles.ApplyTheme(styles.Theme{
		Highlight: cfg.Theme.Highlight,
		Subtle:    cfg.Theme.Subtle,
		Error:     cfg.Theme.Error,
		Success:   cfg.Theme.Success,
	})

	if cfg.Debug || debugFlag {
		logPath := cfg.LogFile
		if logPath == "" {
			logPath = "debug.log"
		}
		cleanup, err := log.Init(logPath, "sprs")
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		closeLog = cleanup
		log.SetMinLevel(logLevel(cfg.LogLevel))
		log.Info(log.CatCLI, "SPRS starting", "command", cmd.Name(), "config", viper.ConfigFileUsed())
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	closeLog()
	closeLog = func() {}
	return nil
}

// newService wires the registry with the ambient tracing, caching and event
// layers described by c. The returned function releases them.
func newService(c config.Config) (*application.Service, func(context.Context), error) {
	sessionID := uuid.NewString()

	tc := c.Tracing
	tc.SessionID = sessionID
	if tc.Enabled && tc.Exporter == tracing.ExporterFile && tc.FilePath == "" {
		tc.FilePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tc)
	if err != nil {
		return nil, nil, fmt.Errorf("creating tracing provider: %w", err)
	}
	log.Debug(log.CatTrace, "Tracing configured", "enabled", provider.Enabled(), "exporter", tc.Exporter, "session", sessionID)

	opts := []application.Option{application.WithTracer(provider.Tracer())}
	if c.Cache.Enabled {
		lookup := cachemanager.NewInMemoryCacheManager[string, domain.Record](
			"patients", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
		opts = append(opts, application.WithLookupCache(lookup, c.Cache.TTL))
	}

	svc := application.NewService(domain.NewRegistry(), opts...)
	release := func(ctx context.Context) {
		svc.Close()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}
	return svc, release, nil
}

// watchConfig re-applies the log settings whenever the config file changes.
func watchConfig() {
	if viper.ConfigFileUsed() == "" {
		return
	}
	v := viper.GetViper()
	v.OnConfigChange(func(e fsnotify.Event) {
		if _, err := reloadConfig(v); err != nil {
			log.ErrorErr(log.CatConfig, "Reloading config failed", err, "path", e.Name)
			return
		}
		log.Info(log.CatConfig, "Config reloaded", "path", e.Name, "op", e.Op.String())
	})
	v.WatchConfig()
}

// reloadConfig decodes the current state of v and applies its log settings.
// Only the log settings take effect while running; everything else is read at startup.
func reloadConfig(v *viper.Viper) (config.Config, error) {
	var updated config.Config
	if err := v.Unmarshal(&updated); err != nil {
		return config.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := config.ValidateLogLevel(updated.LogLevel); err != nil {
		return config.Config{}, err
	}
	applyLogging(updated.Debug || debugFlag, updated.LogLevel)
	return updated, nil
}

// applyLogging toggles the logger installed at startup. It has no effect
// when logging was never initialised.
func applyLogging(enabled bool, level string) {
	log.SetEnabled(enabled)
	log.SetMinLevel(logLevel(level))
}

// logLevel maps the log_level key onto a Level. Empty means debug.
func logLevel(s string) log.Level {
	if strings.TrimSpace(s) == "" {
		return log.LevelDebug
	}
	return log.ParseLevel(s)
}

func runApp(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, release, err := newService(cfg)
	if err != nil {
		return err
	}
	defer release(context.Background())

	watchConfig()

	plain, _ := cmd.Flags().GetBool("plain")
	if plain || cfg.UI.Mode == config.ModePlain || !interactive(cmd) {
		lipgloss.SetColorProfile(termenv.Ascii)
		log.Debug(log.CatUI, "Starting prompt loop")
		return menu.New(svc, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := app.New(ctx, svc, app.Options{
		ShowActivity:  cfg.UI.ShowActivity,
		MarkdownStyle: cfg.UI.MarkdownStyle,
		Debug:         cfg.Debug || debugFlag,
	})
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), menu.ExitText)
	return nil
}

// interactive reports whether stdin is a terminal. Piped input falls back to
// the prompt loop so transcripts can be replayed.
func interactive(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
