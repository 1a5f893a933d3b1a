package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"meshbrowse/config"
	"meshbrowse/daemon"
	"meshbrowse/logger"
	"meshbrowse/server"
	"meshbrowse/store"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local viewer server",
		Long: "Serve the home page, viewer and sandboxed content frames. Open\n" +
			"http://<listen>/open?url=ctt://<hash> to navigate.",
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	f := cmd.Flags()
	f.String("listen", "", "listen address (default: 127.0.0.1:8766)")
	f.String("store", "", "session store backend: memory or redis")
	f.String("redis", "", "redis address for the redis store")
	f.Int("poll", 0, "daemon status poll interval in seconds (5-30)")
	a.bind("server.listen", f.Lookup("listen"))
	a.bind("store.backend", f.Lookup("store"))
	a.bind("store.redis_address", f.Lookup("redis"))
	a.bind("daemon.poll_seconds", f.Lookup("poll"))
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	backend, err := openBackend(a.cfg.Store)
	if err != nil {
		return err
	}
	defer backend.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	client := a.client(daemon.NewMetrics(reg))

	poller := daemon.NewPoller(client, a.cfg.PollInterval(), a.log)
	poller.Start()
	defer poller.Stop()

	srv := server.New(server.Options{
		Status:       poller,
		Retriever:    client,
		Backend:      backend,
		SessionTTL:   a.cfg.SessionTTL(),
		RewriteLinks: a.cfg.Server.RewriteLinks,
		Registry:     reg,
		Log:          a.log,
	})

	a.log.Info("Viewer ready",
		logger.String("url", "http://"+a.cfg.Server.Listen+"/"),
		logger.String("daemon", client.BaseURL()),
		logger.String("store", a.cfg.Store.Backend),
	)
	return srv.Run(cmd.Context(), a.cfg.Server.Listen)
}

func openBackend(cfg config.Store) (store.Backend, error) {
	switch cfg.Backend {
	case "redis":
		r, err := store.NewRedis(store.RedisConfig{
			Address:           cfg.RedisAddress,
			Password:          cfg.RedisPassword,
			DB:                cfg.RedisDB,
			CompressThreshold: cfg.CompressThreshold,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return r, nil
	default:
		return store.NewMemory(), nil
	}
}
