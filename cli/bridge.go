package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"meshbrowse/bridge"
	"meshbrowse/config"
	"meshbrowse/httpserver"
	"meshbrowse/logger"
)

func (a *app) bindBridgeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("cache-dir", "", "content cache directory (default: ~/.ctt-mesh/content)")
	f.Bool("compress", false, "store new blobs zstd-compressed")
	a.bind("bridge.cache_dir", f.Lookup("cache-dir"))
	a.bind("bridge.compress", f.Lookup("compress"))
}

func (a *app) openCache() (*bridge.Cache, error) {
	return bridge.OpenCache(config.ExpandHome(a.cfg.Bridge.CacheDir), a.cfg.Bridge.Compress)
}

func (a *app) bridgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Run the reference daemon bridge over a local cache",
		Long: "Serve GET /status and GET /retrieve/{hash} from a content cache directory,\n" +
			"standing in for the mesh daemon.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := a.openCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			r := httpserver.NewEngine(a.log)
			bridge.NewHandler(cache, a.log).Register(r)

			a.log.Info("Bridge ready",
				logger.String("listen", a.cfg.Bridge.Listen),
				logger.String("cache_dir", cache.Dir()),
			)
			return httpserver.New("bridge", a.cfg.Bridge.Listen, r, a.log).Run(cmd.Context())
		},
	}
	cmd.Flags().String("listen", "", "listen address (default: 127.0.0.1:8765)")
	a.bind("bridge.listen", cmd.Flags().Lookup("listen"))
	a.bindBridgeFlags(cmd)
	return cmd
}

func (a *app) publishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <file>...",
		Short: "Add files to the bridge cache and print their ctt:// addresses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := a.openCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				id, err := cache.Put(data)
				if err != nil {
					return fmt.Errorf("publish %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id.URL(), path)
			}
			return nil
		},
	}
	a.bindBridgeFlags(cmd)
	return cmd
}
