package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"meshbrowse/navigation"
	"meshbrowse/render"
	"meshbrowse/store"
)

func (a *app) openCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "open <ctt-url|hash>",
		Short: "Retrieve content and print it",
		Long: "Navigate to a ctt:// address once: check the daemon, retrieve the content\n" +
			"and print it rendered for the terminal.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOpen(cmd, args[0], raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the content exactly as delivered")
	return cmd
}

func (a *app) runOpen(cmd *cobra.Command, target string, raw bool) error {
	ctx := cmd.Context()
	client := a.client(nil)
	backend := store.NewMemory()
	defer backend.Close()
	session := store.NewSession(backend, uuid.NewString(), a.cfg.SessionTTL())

	nav := navigation.NewController(navigation.Options{
		Status:    client,
		Retriever: client,
		Store:     session,
		Log:       a.log,
	})
	out := nav.Navigate(ctx, target)
	if out.State == navigation.Error {
		return errors.New(out.Message)
	}

	p, ok, err := session.Get(ctx, out.ID)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	if !ok {
		return fmt.Errorf("content %s missing after retrieval", out.ID.Short())
	}

	w := cmd.OutOrStdout()
	if raw {
		_, err := fmt.Fprint(w, p.Content)
		return err
	}
	fmt.Fprintf(w, "%s  [%s, %s]\n", out.ID.URL(), render.SourceLabel(p.Source), p.MimeType)
	if render.Classify(p.MimeType) == render.KindHTML {
		if title := render.Title(p.Content); title != "" {
			fmt.Fprintln(w, title)
		}
	}
	fmt.Fprintln(w)
	_, err = fmt.Fprint(w, render.Text(p, terminalWidth(w)))
	return err
}
