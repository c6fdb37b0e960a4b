package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/moodlog/internal/backend"
	"github.com/f3rmion/moodlog/internal/session"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the analysis backend is reachable",
	Long: `Query the backend's health endpoint and print the result.

The command exits with status 1 when the backend is unreachable or
reports itself unhealthy. With --watch it keeps polling on the
configured health.interval until interrupted.

Examples:
  moodlog health
  moodlog health --backend http://10.0.0.5:8000
  moodlog health --watch`,
	RunE: runHealth,
}

var healthWatch bool

// errUnhealthy makes the command exit non-zero without extra output.
var errUnhealthy = errors.New("backend is unhealthy")

var (
	healthyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCF7F")).Bold(true)
	unhealthyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B8B9E"))
)

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().BoolVarP(&healthWatch, "watch", "w", false, "keep polling until interrupted")
}

func runHealth(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	monitor := session.NewMonitor(a.client, a.config.Health.Interval, a.log)

	if !healthWatch {
		ev := monitor.Check(ctx)
		fmt.Println(formatHealth(a.client.BaseURL(), ev))
		if !ev.Healthy {
			cmd.SilenceErrors = true
			return errUnhealthy
		}
		return nil
	}

	monitor.Start(ctx)
	defer monitor.Stop()

	for {
		select {
		case ev := <-monitor.Events():
			fmt.Println(dimStyle.Render(ev.At.Format("15:04:05")) + " " + formatHealth(a.client.BaseURL(), ev))
		case <-ctx.Done():
			return nil
		}
	}
}

func formatHealth(url string, ev session.HealthEvent) string {
	if !ev.Healthy {
		reason := "unhealthy"
		switch {
		case ev.Err != nil:
			reason = backend.Message(ev.Err)
		case ev.Status != nil && ev.Status.Status != "":
			reason = "status " + ev.Status.Status
		}
		return unhealthyStyle.Render("● API Error") + "  " + url + dimStyle.Render("  "+reason)
	}

	var details []string
	if ev.Status.Version != "" {
		details = append(details, "v"+ev.Status.Version)
	}
	if len(ev.Status.Agents) > 0 {
		details = append(details, strings.Join(ev.Status.Agents, ", "))
	}
	line := healthyStyle.Render("● API Ready") + "  " + url
	if len(details) > 0 {
		line += dimStyle.Render("  " + strings.Join(details, " · "))
	}
	return line
}
