package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"meshbrowse/contentid"
	"meshbrowse/daemon"
	"meshbrowse/render"
)

func (a *app) getCmd() *cobra.Command {
	var (
		dir         string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "get <hash>...",
		Short: "Retrieve content to files",
		Long: "Retrieve one or more identifiers concurrently and write each payload to\n" +
			"content_<first 8 chars> in the output directory.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]contentid.ID, 0, len(args))
			for _, arg := range args {
				id, err := contentid.Parse(arg)
				if err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}
				ids = append(ids, id)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			return a.runGet(cmd, ids, dir, concurrency)
		},
	}
	cmd.Flags().StringVarP(&dir, "output", "o", ".", "output directory")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 4, "parallel retrievals")
	return cmd
}

func (a *app) runGet(cmd *cobra.Command, ids []contentid.ID, dir string, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}
	client := a.client(nil)
	if !client.Status(cmd.Context()).Connected {
		return fmt.Errorf("Mesh daemon not running at %s", client.BaseURL())
	}

	var mu sync.Mutex
	w := cmd.OutOrStdout()

	p := pool.New().WithMaxGoroutines(concurrency).WithContext(cmd.Context())
	for _, id := range ids {
		id := id
		p.Go(func(ctx context.Context) error {
			path, res, err := fetchTo(ctx, client, id, dir)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(w, "%s -> %s (%s, %s)\n", id.URL(), path, res.MimeType,
				daemon.FormatBytes(uint64(len(res.Content))))
			return nil
		})
	}
	return p.Wait()
}

func fetchTo(ctx context.Context, client *daemon.Client, id contentid.ID, dir string) (string, daemon.Result, error) {
	res := client.Retrieve(ctx, id)
	if !res.Success {
		return "", res, fmt.Errorf("retrieve %s: %s", id.Short(), res.Error)
	}
	path := filepath.Join(dir, render.Filename(id))
	if err := os.WriteFile(path, []byte(res.Content), 0o644); err != nil {
		return "", res, fmt.Errorf("write %s: %w", path, err)
	}
	return path, res, nil
}
