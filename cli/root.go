// Package cli implements the meshbrowse command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"meshbrowse/config"
	"meshbrowse/daemon"
	"meshbrowse/logger"
	"meshbrowse/render"
)

// EnvPrefix prefixes environment overrides, e.g. MESHBROWSE_DAEMON_URL.
const EnvPrefix = "MESHBROWSE"

// app carries state shared by every command of one invocation.
type app struct {
	v   *viper.Viper
	cfg *config.Config
	log logger.Logger
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "meshbrowse",
		Short: "Browse ctt:// content through a local mesh daemon",
		Long: "meshbrowse resolves ctt://<hash> addresses through the local mesh daemon\n" +
			"and displays the content in a terminal or a local viewer server.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: ~/.config/meshbrowse/config.toml)")
	pf.String("daemon", "", "mesh daemon URL (default: http://localhost:8765)")
	pf.Int("timeout", 0, "daemon request timeout in seconds")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	a.bind("config", pf.Lookup("config"))
	a.bind("daemon.url", pf.Lookup("daemon"))
	a.bind("daemon.timeout_seconds", pf.Lookup("timeout"))
	a.bind("log.level", pf.Lookup("log-level"))

	root.AddCommand(
		a.openCmd(),
		a.statusCmd(),
		a.parseCmd(),
		a.getCmd(),
		a.serveCmd(),
		a.bridgeCmd(),
		a.publishCmd(),
		a.configCmd(),
	)
	return root
}

// viperKey annotates a flag with the config key it overrides. Several
// commands may carry a flag for the same key; only the running command's
// flags are bound.
const viperKey = "meshbrowse/config-key"

func (a *app) bind(key string, f *pflag.Flag) {
	if f.Annotations == nil {
		f.Annotations = make(map[string][]string)
	}
	f.Annotations[viperKey] = []string{key}
}

// setup loads the TOML config, applies flag and environment overrides and
// builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if keys := f.Annotations[viperKey]; len(keys) == 1 && bindErr == nil {
			bindErr = a.v.BindPFlag(keys[0], f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	cfg, err := config.Load(config.ExpandHome(a.v.GetString("config")))
	if err != nil {
		return err
	}
	applyOverrides(cfg, a.v)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.log = log
	return nil
}

// applyOverrides copies every flag or environment value viper has seen
// onto cfg.
func applyOverrides(cfg *config.Config, v *viper.Viper) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	flag := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	str("daemon.url", &cfg.Daemon.URL)
	num("daemon.timeout_seconds", &cfg.Daemon.TimeoutSeconds)
	num("daemon.poll_seconds", &cfg.Daemon.PollSeconds)
	str("server.listen", &cfg.Server.Listen)
	flag("server.rewrite_links", &cfg.Server.RewriteLinks)
	str("store.backend", &cfg.Store.Backend)
	str("store.redis_address", &cfg.Store.RedisAddress)
	str("store.redis_password", &cfg.Store.RedisPassword)
	num("store.redis_db", &cfg.Store.RedisDB)
	num("store.session_ttl_minutes", &cfg.Store.SessionTTLMinutes)
	num("store.compress_threshold", &cfg.Store.CompressThreshold)
	str("bridge.listen", &cfg.Bridge.Listen)
	str("bridge.cache_dir", &cfg.Bridge.CacheDir)
	flag("bridge.compress", &cfg.Bridge.Compress)
	str("log.level", &cfg.Log.Level)
	flag("log.development", &cfg.Log.Development)
}

// client builds a daemon client from the loaded config.
func (a *app) client(m *daemon.Metrics) *daemon.Client {
	return daemon.NewClient(daemon.Options{
		BaseURL: a.cfg.Daemon.URL,
		Timeout: a.cfg.DaemonTimeout(),
	}, a.log, m)
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		return render.TerminalWidth(f)
	}
	return render.DefaultWidth
}
