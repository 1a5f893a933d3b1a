package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"meshbrowse/contentid"
)

func (a *app) parseCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "parse <url>",
		Short: "Validate a ctt:// address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := contentid.Validate(args[0])
			w := cmd.OutOrStdout()
			if asJSON {
				if err := json.NewEncoder(w).Encode(v); err != nil {
					return err
				}
			} else if v.Valid {
				fmt.Fprintln(w, v.Hash.URL())
			}
			if !v.Valid {
				return errors.New(v.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the validation result as JSON")
	return cmd
}
