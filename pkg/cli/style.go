package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/smolitux/fedlink/pkg/cli/internal/output"
	"github.com/smolitux/fedlink/pkg/federation"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// statusBadge renders a connection status for terminal output.
func statusBadge(s federation.Status) string {
	switch s {
	case federation.StatusConnected:
		return successStyle.Render("● " + string(s))
	case federation.StatusConnecting:
		return warningStyle.Render("◌ " + string(s))
	case federation.StatusError:
		return errorStyle.Render("✖ " + string(s))
	default:
		return infoStyle.Render("○ " + string(s))
	}
}

// printNotification writes one connection transition.
func printNotification(w io.Writer, n federation.Notification) {
	line := fmt.Sprintf("%-12s %s", n.Protocol, statusBadge(n.Status))
	if n.Err != nil {
		line += "  " + infoStyle.Render(n.Err.Error())
	}
	fmt.Fprintln(w, line)
}

// printStates writes a table of connection states sorted by protocol.
func printStates(w io.Writer, states map[federation.ProtocolName]federation.ConnectionState) error {
	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, string(name))
	}
	sort.Strings(names)

	tw := output.Table(w)
	fmt.Fprintln(tw, "PROTOCOL\tSTATUS\tPHASE\tATTEMPT\tLAST ACTIVITY\tERROR")
	for _, name := range names {
		s := states[federation.ProtocolName(name)]
		last := "-"
		if !s.LastActivity.IsZero() {
			last = s.LastActivity.Format(time.RFC3339)
		}
		errText := "-"
		if s.LastError != nil {
			errText = s.LastError.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", name, s.Status, s.Phase, s.Attempt, last, errText)
	}
	return tw.Flush()
}

// printSummary writes the aggregate federation status.
func printSummary(w io.Writer, sum federation.Summary) {
	state := errorStyle.Render("inactive")
	if sum.Active {
		state = successStyle.Render("active")
	}
	fmt.Fprintf(w, "%s %s  %d/%d connected\n",
		headerStyle.Render("Federation:"), state, sum.ActiveConnections, sum.AvailableProtocols)
	if sum.Error != "" {
		fmt.Fprintln(w, warningStyle.Render("Last error: ")+sum.Error)
	}
}
