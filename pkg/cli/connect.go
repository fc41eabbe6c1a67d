package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/smolitux/fedlink/pkg/cli/internal/output"
	"github.com/smolitux/fedlink/pkg/config"
	"github.com/smolitux/fedlink/pkg/federation"
	"github.com/smolitux/fedlink/pkg/transport"
)

var (
	connectTransport   string
	connectAskPassword bool
	connectFilter      string
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to every configured protocol and stream messages",
	Long: `Connect opens one streaming connection per configured protocol and prints
connection transitions and inbound messages until interrupted.

Failed connections are retried according to the errorHandling section of
the configuration. With --json, every event is printed as one JSON line.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("transport") {
			cfg.Transport = transport.Kind(connectTransport)
		}
		if cmd.Flags().Changed("filter") {
			cfg.Filter = connectFilter
		}
		if connectAskPassword {
			if cfg.Auth == nil {
				cfg.Auth = &federation.Credentials{}
			}
			if err := promptCredentials(cfg.Auth); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runConnect(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	connectCmd.Flags().StringVar(&connectTransport, "transport", "", "WebSocket backend: coder or gorilla (overrides config)")
	connectCmd.Flags().BoolVar(&connectAskPassword, "ask-password", false, "Prompt for a username and password")
	connectCmd.Flags().StringVar(&connectFilter, "filter", "", "Only print messages matching this expression")
	rootCmd.AddCommand(connectCmd)
}

// connectEvent is the JSON shape of streamed connect output.
type connectEvent struct {
	Type         string                   `json:"type"`
	Notification *federation.Notification `json:"notification,omitempty"`
	Error        string                   `json:"error,omitempty"`
	Message      *federation.Message      `json:"message,omitempty"`
	Summary      *federation.Summary      `json:"summary,omitempty"`
}

// runConnect runs a manager for cfg until ctx is cancelled.
func runConnect(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	log, closeLog, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	dialer, err := transport.New(cfg.Transport)
	if err != nil {
		return err
	}

	opts := cfg.ManagerOptions()
	opts.Dialer = dialer
	opts.Logger = log
	opts.OnConnection = func(n federation.Notification) {
		if jsonOutput {
			ev := connectEvent{Type: "connection", Notification: &n}
			if n.Err != nil {
				ev.Error = n.Err.Error()
			}
			_ = output.JSONLine(stdout, ev)
			return
		}
		printNotification(stdout, n)
	}
	opts.OnMessage = func(msg federation.Message) {
		if jsonOutput {
			_ = output.JSONLine(stdout, connectEvent{Type: "message", Message: &msg})
			return
		}
		fmt.Fprintf(stdout, "%s %s\n", headerStyle.Render(string(msg.Protocol)), describeContent(msg.Content))
	}

	mgr, err := federation.NewManager(opts)
	if err != nil {
		return err
	}
	if len(cfg.Protocols) == 0 {
		output.Warn(stderr, "no protocols configured in %s", configPath)
	}
	if err := mgr.Start(ctx, cfg.Protocols); err != nil {
		return err
	}

	<-ctx.Done()
	sum := mgr.Summary()
	states := mgr.States()
	mgr.Stop()

	if jsonOutput {
		return output.JSONLine(stdout, connectEvent{Type: "summary", Summary: &sum})
	}
	fmt.Fprintln(stdout)
	printSummary(stdout, sum)
	if len(states) > 0 {
		return printStates(stdout, states)
	}
	return nil
}

// describeContent renders a one-line view of a message payload.
func describeContent(content any) string {
	m, ok := content.(map[string]any)
	if !ok {
		return fmt.Sprint(content)
	}
	if raw, ok := m["raw"].(string); ok && len(m) == 1 {
		return raw
	}
	kind, _ := m["type"].(string)
	id, _ := m["id"].(string)
	switch {
	case kind != "" && id != "":
		return kind + " " + infoStyle.Render(id)
	case kind != "":
		return kind
	default:
		return fmt.Sprintf("%d fields", len(m))
	}
}

// promptCredentials asks for a username and password interactively.
func promptCredentials(creds *federation.Credentials) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&creds.Username).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("username is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password),
		),
	)
	return form.Run()
}
