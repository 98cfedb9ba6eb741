package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/expr-lang/expr"
	"github.com/google/shlex"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nimbuscloud/nimbus/pkg/client"
	"github.com/nimbuscloud/nimbus/pkg/compute"
	"github.com/nimbuscloud/nimbus/pkg/config"
	"github.com/nimbuscloud/nimbus/pkg/database"
	"github.com/nimbuscloud/nimbus/pkg/resource"
)

var endpoint string
var configFile string
var envFile string
var token string
var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:           "nimbusctl",
		Short:         "Inspect and operate compute-like cloud resources",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		},
	}

	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "",
		"API endpoint of the resource collection (e.g., https://api.example.com/v2/servers)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to optional YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"Path to optional env file (defaults to .env in the working directory)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "",
		"Bearer token for authenticated requests")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false,
		"Enable debug logging of individual requests")

	rootCmd.AddCommand(cmdGet())
	rootCmd.AddCommand(cmdWait())
	rootCmd.AddCommand(cmdAction())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", prettifyError(err))
		os.Exit(1)
	}
}

func cmdGet() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Fetch a resource and print its current fields",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			svc, _, err := setup()
			if err != nil {
				return err
			}
			kind, err := kindFor(args[0])
			if err != nil {
				return err
			}

			h, err := resource.FromID(ctx, svc, kind, args[1])
			if err != nil {
				return err
			}

			renderHandle(h)
			return nil
		},
	}

	return cmd
}

func cmdWait() *cobra.Command {
	var (
		status    string
		timeout   time.Duration
		interval  time.Duration
		untilExpr string
	)

	cmd := &cobra.Command{
		Use:   "wait <kind> <id>",
		Short: "Poll a resource until it reaches a terminal status",
		Long: `Wait refreshes the resource on a fixed interval until its status equals
the requested terminal status, the resource reports ERROR, or the timeout
elapses. The final status decides the exit code.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			svc, cfg, err := setup()
			if err != nil {
				return err
			}
			kind, err := kindFor(args[0])
			if err != nil {
				return err
			}

			h := resource.FromFields(svc, kind, map[string]any{"id": args[1]})

			opts := resource.WaitOptions{
				Status:   status,
				Timeout:  timeout,
				Interval: interval,
			}
			if opts.Timeout <= 0 {
				opts.Timeout = cfg.WaitTimeout
			}
			if opts.Interval <= 0 {
				opts.Interval = cfg.PollInterval
			}

			var untilMet bool
			if untilExpr != "" {
				program, err := expr.Compile(untilExpr)
				if err != nil {
					return fmt.Errorf("invalid --until expression %q: %w", untilExpr, err)
				}
				opts.Observer = func(h *resource.Handle) {
					log.Info().Str("status", h.Status).Msg("Polled resource")
					out, err := expr.Run(program, exprEnv(h))
					if err != nil {
						log.Debug().Err(err).Msg("Failed to evaluate --until expression")
						return
					}
					if met, ok := out.(bool); ok && met {
						untilMet = true
						cancel()
					}
				}
			} else {
				opts.Observer = func(h *resource.Handle) {
					log.Info().Str("status", h.Status).Msg("Polled resource")
				}
			}

			err = h.WaitFor(ctx, opts)
			if untilMet && errors.Is(err, context.Canceled) {
				err = nil
			}
			if err != nil {
				return err
			}

			// The poller never says which exit it took; the final status does.
			switch {
			case untilMet:
				pterm.Success.Printf("Condition met with status %s\n", h.Status)
			case h.Status == resource.StatusError:
				pterm.Error.Println("Resource entered ERROR state")
				os.Exit(1)
			case h.Status == orDefault(status, resource.StatusActive):
				pterm.Success.Printf("Resource reached status %s\n", h.Status)
			default:
				pterm.Warning.Printf("Timed out with status %s\n", h.Status)
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", resource.StatusActive,
		"Terminal status to wait for")
	cmd.Flags().DurationVar(&timeout, "timeout", 0,
		"Maximum time to wait (defaults to the configured waitTimeout)")
	cmd.Flags().DurationVar(&interval, "interval", 0,
		"Sleep between polls (defaults to the configured pollInterval)")
	cmd.Flags().StringVar(&untilExpr, "until", "",
		"Stop early once this expression over the resource fields is true\n"+
			"(e.g. --until 'status == \"VERIFY_RESIZE\"')")

	return cmd
}

func cmdAction() *cobra.Command {
	var payloadFile string

	cmd := &cobra.Command{
		Use:   "action <kind> <id> [SHORTHAND]",
		Short: "Send an operation payload to a resource's action endpoint",
		Long: `Action posts an operation object to the resource's /action sub-resource.
The payload comes from a YAML file (--payload) or from a shorthand argument of
the form 'NAME KEY=VALUE...', e.g.:

  nimbusctl action server 42 'reboot type=HARD'`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			svc, _, err := setup()
			if err != nil {
				return err
			}
			kind, err := kindFor(args[0])
			if err != nil {
				return err
			}

			var payload map[string]any
			switch {
			case payloadFile != "":
				data, err := os.ReadFile(payloadFile)
				if err != nil {
					return fmt.Errorf("failed to read payload file: %w", err)
				}
				if err := yaml.Unmarshal(data, &payload); err != nil {
					return fmt.Errorf("failed to parse payload file: %w", err)
				}
			case len(args) == 3:
				payload, err = parseShorthand(args[2])
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("either --payload or a shorthand argument is required")
			}

			h := resource.FromFields(svc, kind, map[string]any{"id": args[1]})
			resp, err := h.Do(ctx, payload)
			if err != nil {
				return err
			}

			if resp.Body != "" {
				fmt.Println(resp.Body)
			}
			pterm.Success.Printf("Action accepted with status %d\n", resp.StatusCode)
			return nil
		},
	}

	cmd.Flags().StringVar(&payloadFile, "payload", "",
		"Path to a YAML file holding the action payload object")

	return cmd
}

func setup() (*client.Client, *config.Config, error) {
	cfg, err := config.Load(configFile, envFile)
	if err != nil {
		return nil, nil, err
	}

	// Flags override file and environment
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if token != "" {
		cfg.Token = token
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	svc, err := client.New(
		client.WithEndpoint(cfg.Endpoint),
		client.WithToken(cfg.Token),
		client.WithAcceptedNamespaces(cfg.Namespaces...),
	)
	if err != nil {
		return nil, nil, err
	}

	return svc, cfg, nil
}

func kindFor(name string) (resource.Kind, error) {
	switch strings.ToLower(name) {
	case "server", "servers":
		return compute.Kind, nil
	case "instance", "instances", "database", "databases":
		return database.Kind, nil
	default:
		return nil, fmt.Errorf("unknown resource kind: %s", name)
	}
}

// parseShorthand turns 'reboot type=HARD' into {"reboot": {"type": "HARD"}}.
func parseShorthand(raw string) (map[string]any, error) {
	parts, err := shlex.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid action syntax: %w", err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty action")
	}

	body := make(map[string]string, len(parts)-1)
	for _, kv := range parts[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("expected KEY=VALUE, got %q", kv)
		}
		body[k] = v
	}

	return map[string]any{parts[0]: body}, nil
}

func exprEnv(h *resource.Handle) map[string]any {
	env := map[string]any{
		"id":     h.ID,
		"status": h.Status,
	}
	for k, v := range h.Fields {
		env[k] = v
	}
	return env
}

func renderHandle(h *resource.Handle) {
	rows := pterm.TableData{{"FIELD", "VALUE"}}
	rows = append(rows, []string{"id", h.ID})
	rows = append(rows, []string{"status", h.Status})

	keys := make([]string, 0, len(h.Fields))
	for k := range h.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, []string{k, fmt.Sprint(h.Fields[k])})
	}
	for _, l := range h.Links {
		rows = append(rows, []string{"link:" + l.Rel, l.Href})
	}

	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func prettifyError(err error) string {
	// Traverse wrapped errors and build a list
	type unwrapper interface {
		Unwrap() error
	}

	var parts []string
	current := err
	for current != nil {
		parts = append(parts, current.Error())

		if u, ok := current.(unwrapper); ok {
			current = u.Unwrap()
		} else {
			break
		}
	}

	// Return the top-level message + root cause
	if len(parts) == 1 {
		return parts[0]
	}

	return fmt.Sprintf("%s\n- %s", parts[0], parts[len(parts)-1])
}
