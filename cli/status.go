package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"meshbrowse/daemon"
)

func (a *app) statusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show mesh daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.client(nil).Status(cmd.Context())
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			state := "offline"
			if st.Connected {
				state = "online"
			}
			fmt.Fprintf(w, "Daemon:  %s (%s)\n", state, a.cfg.Daemon.URL)
			fmt.Fprintf(w, "Nodes:   %d\n", st.NodeCount)
			fmt.Fprintf(w, "Cache:   %s\n", daemon.FormatBytes(st.CacheSize))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")
	return cmd
}
