package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/f3rmion/moodlog/internal/collector"
	"github.com/f3rmion/moodlog/internal/history"
	"github.com/f3rmion/moodlog/internal/normalize"
	"github.com/f3rmion/moodlog/internal/report"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"h"},
	Short:   "List saved reflections",
	Long: `List the reflections saved in the history database, newest first.

Examples:
  moodlog history
  moodlog history --limit 5 --json
  moodlog history show 0b6f1c2e-...
  moodlog history rm 0b6f1c2e-...`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved reflection",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a saved reflection",
	Args:    cobra.ExactArgs(1),
	RunE:    runHistoryRm,
}

var (
	historyLimit int
	historyJSON  bool
)

var errHistoryDisabled = errors.New("history is disabled; set history.enabled in the config")

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyRmCmd)
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "print JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "how many reflections to list")
}

// withHistory opens the store for the duration of fn.
func withHistory(fn func(ctx context.Context, s *history.Store) error) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	store, err := a.openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return errHistoryDisabled
	}
	defer store.Close()

	return fn(context.Background(), store)
}

type entryJSON struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Mode      string `json:"mode"`
	Topic     string `json:"topic"`
	Excerpt   string `json:"excerpt"`
	MoodScore int    `json:"mood_score"`
	Label     string `json:"label"`
}

func toJSON(e history.Entry) entryJSON {
	return entryJSON{
		ID:        e.ID,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		Mode:      e.Mode.String(),
		Topic:     e.Topic,
		Excerpt:   e.Excerpt,
		MoodScore: e.MoodScore,
		Label:     e.Label,
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, s *history.Store) error {
		entries, err := s.List(ctx, historyLimit)
		if err != nil {
			return err
		}

		if historyJSON {
			out := make([]entryJSON, 0, len(entries))
			for _, e := range entries {
				out = append(out, toJSON(e))
			}
			return printJSON(out)
		}

		if len(entries) == 0 {
			fmt.Println("No reflections yet.")
			return nil
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(dimStyle).
			Headers("ID", "DATE", "MOOD", "SCORE", "TOPIC")
		for _, e := range entries {
			t.Row(
				e.ID[:min(8, len(e.ID))],
				e.CreatedAt.Local().Format("Jan 2 15:04"),
				e.Label,
				strconv.Itoa(e.MoodScore),
				collector.Excerpt(e.Topic, 48),
			)
		}
		fmt.Println(t.Render())
		return nil
	})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, s *history.Store) error {
		e, err := findEntry(ctx, s, args[0])
		if err != nil {
			return err
		}

		if historyJSON {
			return printJSON(e.Result)
		}

		n := normalize.New(nil)
		data := report.Build(n, e.Result, n.Normalize(e.Result))
		out, err := report.NewGenerator().Render(report.FormatText, data)
		if err != nil {
			return err
		}
		fmt.Println(dimStyle.Render(e.CreatedAt.Local().Format("Mon Jan 2 2006 15:04") + " · " + e.ID))
		fmt.Print(out)
		return nil
	})
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, s *history.Store) error {
		e, err := findEntry(ctx, s, args[0])
		if err != nil {
			return err
		}
		if err := s.Delete(ctx, e.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", e.ID)
		return nil
	})
}

// findEntry resolves a full id, or a unique prefix as printed by the list.
func findEntry(ctx context.Context, s *history.Store, id string) (history.Entry, error) {
	e, err := s.Get(ctx, id)
	if err == nil || !errors.Is(err, history.ErrNotFound) {
		return e, err
	}

	entries, err := s.List(ctx, 0)
	if err != nil {
		return history.Entry{}, err
	}
	var match []history.Entry
	for _, e := range entries {
		if len(id) >= 4 && len(e.ID) >= len(id) && e.ID[:len(id)] == id {
			match = append(match, e)
		}
	}
	switch len(match) {
	case 0:
		return history.Entry{}, fmt.Errorf("%w: %s", history.ErrNotFound, id)
	case 1:
		return match[0], nil
	}
	return history.Entry{}, fmt.Errorf("id prefix %s is ambiguous", id)
}
