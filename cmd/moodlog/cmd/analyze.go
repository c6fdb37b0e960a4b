package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/f3rmion/moodlog/internal/backend"
	"github.com/f3rmion/moodlog/internal/collector"
	"github.com/f3rmion/moodlog/internal/history"
	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/report"
	"github.com/f3rmion/moodlog/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Analyze a reflection, image or social post once",
	Long: `Send one reflection to the analysis backend and print the result.

Exactly one input is used:
  - the text arguments (or stdin when the only argument is "-")
  - --image with a PNG, JPG, GIF, WEBP or BMP file up to 10 MB
  - --url with an Instagram post or reel link

Examples:
  moodlog analyze "Long walk by the river, finally feel rested"
  echo "rough day at work" | moodlog analyze -
  moodlog analyze --image ~/Pictures/sunset.jpg
  moodlog analyze --url https://www.instagram.com/p/ABC123xyz/ --json`,
	RunE: runAnalyze,
}

var (
	analyzeImage    string
	analyzeURL      string
	analyzeJSON     bool
	analyzeRaw      bool
	analyzeDetail   bool
	analyzeMarkdown bool
	analyzeNoSave   bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeImage, "image", "i", "", "analyze an image file")
	analyzeCmd.Flags().StringVarP(&analyzeURL, "url", "u", "", "analyze an Instagram post or reel link")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the view-model as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeRaw, "raw", false, "print the backend's JSON receipt")
	analyzeCmd.Flags().BoolVarP(&analyzeDetail, "detail", "d", false, "render the full report with the detailed analysis")
	analyzeCmd.Flags().BoolVar(&analyzeMarkdown, "markdown", false, "print the full report as plain markdown")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "do not store the result in history")
	analyzeCmd.MarkFlagsMutuallyExclusive("image", "url")
	analyzeCmd.MarkFlagsMutuallyExclusive("json", "raw", "detail", "markdown")
}

// collect fills a collector from the command's arguments and flags.
func collect(args []string, stdin io.Reader) (*collector.Collector, error) {
	c := collector.New()

	switch {
	case analyzeImage != "":
		if len(args) > 0 {
			return nil, errors.New("text arguments cannot be combined with --image")
		}
		c.SetMode(journal.ModeImage)
		if _, err := c.SelectImage(analyzeImage); err != nil {
			return nil, err
		}
	case analyzeURL != "":
		if len(args) > 0 {
			return nil, errors.New("text arguments cannot be combined with --url")
		}
		c.SetMode(journal.ModeSocial)
		c.SetURL(analyzeURL)
		if !c.URLValid() {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", collector.SocialURLError)
		}
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		c.SetText(string(data))
	default:
		c.SetText(strings.Join(args, " "))
	}
	return c, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	c, err := collect(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	req, err := c.Request(a.config.ArticleCount(), a.config.Platforms())
	if errors.Is(err, collector.ErrNothingToSubmit) {
		return errors.New(backend.MsgEmptyTopic)
	}
	if err != nil {
		return err
	}

	sess := session.New(a.client, a.log)
	snap, err := sess.Analyze(ctx, req)
	if err != nil {
		return fmt.Errorf("%s", backend.Message(err))
	}

	if !analyzeNoSave {
		saveReflection(ctx, a, snap, c.Excerpt())
	}

	out, err := renderAnalysis(sess, snap)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func renderAnalysis(sess *session.Session, snap session.Snapshot) (string, error) {
	switch {
	case analyzeRaw:
		receipt, err := report.Receipt(snap.Result)
		if err != nil {
			return "", err
		}
		return receipt + "\n", nil

	case analyzeJSON:
		out, err := json.MarshalIndent(snap.View, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling view: %w", err)
		}
		return string(out) + "\n", nil
	}

	data := report.Build(sess.Normalizer(), snap.Result, snap.View)
	gen := report.NewGenerator()

	switch {
	case analyzeMarkdown:
		return gen.Render(report.FormatMarkdown, data)
	case analyzeDetail:
		md, err := gen.Render(report.FormatMarkdown, data)
		if err != nil {
			return "", err
		}
		r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(100))
		if err != nil {
			return md, nil
		}
		out, err := r.Render(md)
		if err != nil {
			return md, nil
		}
		return out, nil
	}
	return gen.Render(report.FormatText, data)
}

// saveReflection stores a successful analysis. Failures only warn.
func saveReflection(ctx context.Context, a *app, snap session.Snapshot, excerpt string) {
	store, err := a.openHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	entry, err := store.Save(ctx, history.NewEntry(snap.Request, excerpt, snap.View, snap.Result))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: saving to history: %v\n", err)
		a.log.Error("saving reflection failed", zap.Error(err))
		return
	}
	a.metrics.IncSaved()
	a.log.Debug("reflection saved", zap.String("id", entry.ID))
}
