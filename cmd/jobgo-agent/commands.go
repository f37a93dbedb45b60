package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jobgo-agent/internal/api"
	"jobgo-agent/internal/config"
	"jobgo-agent/internal/detect"
	"jobgo-agent/internal/httpapi"
	"jobgo-agent/internal/instance"
	"jobgo-agent/internal/panel"
	"jobgo-agent/internal/router"
	"jobgo-agent/internal/secrets"
	"jobgo-agent/internal/store"
)

// sender reaches the running agent when there is one and otherwise wires
// an in-process router for the duration of the command.
func sender(ctx context.Context, a *app) (panel.Sender, func(), error) {
	c := httpapi.NewClient(a.cfg.App.ListenAddr)
	if c.Ping(ctx) == nil {
		return c, func() {}, nil
	}
	a.log.Debug("no running agent, using a local router")
	ag, err := newAgent(ctx, a, nil, false)
	if err != nil {
		return nil, nil, err
	}
	return ag.router, func() { _ = ag.Close() }, nil
}

// currentSettings prefers the running agent's view, which may be newer than
// what this process would read.
func currentSettings(ctx context.Context, a *app) (store.Settings, error) {
	c := httpapi.NewClient(a.cfg.App.ListenAddr)
	if c.Ping(ctx) == nil {
		return c.Settings(ctx)
	}
	db, err := store.Open(a.dbPath())
	if err != nil {
		return store.Settings{}, err
	}
	defer db.Close()
	return db.LoadSettings(ctx)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func responseErr(resp router.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.OK {
		return errors.New(resp.Error)
	}
	return nil
}

func stopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := instance.ReadToken(a.dataDir)
			if err != nil {
				return fmt.Errorf("no running agent found in %s: %w", a.dataDir, err)
			}
			return httpapi.NewClient(a.cfg.App.ListenAddr).Shutdown(cmd.Context(), tok)
		},
	}
}

func resolvePage(ctx context.Context, rawURL string, offline bool) (*detect.Detection, error) {
	rawURL = detect.Canonical(rawURL)
	if detect.Detect(rawURL) == nil {
		return nil, fmt.Errorf("%s is not a recognised career page (%s)", rawURL, strings.Join(detect.Platforms(), ", "))
	}
	var meta detect.PageMeta
	if !offline {
		m, err := detect.FetchPageMeta(ctx, &http.Client{Timeout: 10 * time.Second}, rawURL)
		if err == nil {
			meta = m
		}
	}
	return detect.Resolve(rawURL, meta), nil
}

func detectCmd(a *app) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "detect <url>",
		Short: "Classify a URL as a career page and derive the company name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := resolvePage(cmd.Context(), args[0], offline)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"page": d, "message": router.TrackMessage(*d)})
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "do not fetch the page; name the company from its slug")
	return cmd
}

func trackCmd(a *app) *cobra.Command {
	var offline bool
	var name string
	cmd := &cobra.Command{
		Use:   "track <url>",
		Short: "Add the company behind a career page to the JobGo cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := resolvePage(ctx, args[0], offline)
			if err != nil {
				return err
			}
			if name != "" {
				d.Name = name
			}

			s, done, err := sender(ctx, a)
			if err != nil {
				return err
			}
			defer done()

			resp, err := s.Send(ctx, router.TrackMessage(*d))
			if err := responseErr(resp, err); err != nil {
				return fmt.Errorf("track %s/%s: %w", d.Platform, d.Slug, err)
			}
			fmt.Printf("Tracking %s (%s/%s)\n", d.Name, d.Platform, d.Slug)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "do not fetch the page; name the company from its slug")
	cmd.Flags().StringVar(&name, "name", "", "company name to use instead of the derived one")
	return cmd
}

func scanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan the cart for new jobs now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, done, err := sender(ctx, a)
			if err != nil {
				return err
			}
			defer done()

			resp, err := s.Send(ctx, router.Message{Type: router.TypeScanNow})
			if err := responseErr(resp, err); err != nil {
				return err
			}
			return printJSON(resp.Data)
		},
	}
}

func clearBadgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-badge",
		Short: "Blank the new-jobs badge",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, done, err := sender(ctx, a)
			if err != nil {
				return err
			}
			defer done()
			_, err = s.Send(ctx, router.Message{Type: router.TypeClearBadge})
			return err
		},
	}
}

func panelCmd(a *app) *cobra.Command {
	var tab string
	var filters, expand []string
	var scan bool
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Print the side panel: jobs, cart or companies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings, err := currentSettings(ctx, a)
			if err != nil {
				return err
			}
			client := api.New(settings.Runtime(),
				api.WithHTTPClient(&http.Client{Timeout: time.Duration(a.cfg.Backend.TimeoutSeconds) * time.Second}),
				api.WithLogger(a.log))

			s, done, err := sender(ctx, a)
			if err != nil {
				return err
			}
			defer done()

			p := panel.New(client, s, a.log)
			p.Open(ctx)
			for _, f := range filters {
				if err := p.SetFilter(ctx, panel.Filter(f), true); err != nil {
					return err
				}
			}
			if scan {
				p.ScanNow(ctx)
			}
			for _, id := range expand {
				p.ToggleExpanded(id)
			}
			if err := p.SelectTab(ctx, panel.Tab(tab)); err != nil {
				return err
			}
			return panel.Render(os.Stdout, p.View())
		},
	}
	cmd.Flags().StringVar(&tab, "tab", string(panel.TabJobs), "jobs, cart or companies")
	cmd.Flags().StringSliceVar(&filters, "filter", nil, "job filters: new, remote, visa, new_grad")
	cmd.Flags().StringSliceVar(&expand, "expand", nil, "job ids to show in detail")
	cmd.Flags().BoolVar(&scan, "scan", false, "scan the cart before showing the panel")
	return cmd
}

func settingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the backend settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show the backend settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentSettings(cmd.Context(), a)
			if err != nil {
				return err
			}
			return printJSON(s)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set backendUrl or minScore",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := currentSettings(ctx, a)
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			switch key {
			case store.KeyBackendURL:
				s.BackendURL = value
			case store.KeyMinScore:
				n, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("invalid value for minScore: %s", value)
				}
				s.MinScore = n
			default:
				return fmt.Errorf("unknown settings key: %s (want %s or %s)", key, store.KeyBackendURL, store.KeyMinScore)
			}

			rt := config.NewRuntime(s.BackendURL, s.MinScore)
			s = store.Settings{BackendURL: rt.BaseURL, MinScore: rt.MinScore}

			c := httpapi.NewClient(a.cfg.App.ListenAddr)
			if c.Ping(ctx) == nil {
				saved, err := c.SaveSettings(ctx, s)
				if err != nil {
					return err
				}
				return printJSON(saved)
			}

			db, err := store.Open(a.dbPath())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.SaveSettings(ctx, s); err != nil {
				return err
			}
			return printJSON(s)
		},
	})
	return cmd
}

func webhookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the notification webhook URL in the OS keychain",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <url>",
		Short: "Store the webhook URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := secrets.SetWebhookURL(args[0]); err != nil {
				return err
			}
			if !a.cfg.Notify.Webhook {
				fmt.Fprintf(os.Stderr, "note: notify.webhook is off in %s\n", a.cfgPath)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return secrets.DeleteWebhookURL()
		},
	})
	return cmd
}
