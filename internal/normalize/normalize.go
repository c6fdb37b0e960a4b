// Package normalize turns backend analysis results into the fixed
// view-model the renderers consume.
//
// Normalization never fails: absent fields fall back to neutral defaults,
// so any AnalysisResult (including nil) yields a displayable ViewModel.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/logging"
	"go.uber.org/zap"
)

// MaxInsights caps the insight list.
const MaxInsights = 5

// Theme names, in display order.
const (
	ThemeText       = "Text Sentiment"
	ThemeVisual     = "Visual Context"
	ThemeConfidence = "Analysis Confidence"
)

// DefaultLabel is used when neither the final verdict nor the fusion
// report carries a label.
const DefaultLabel = "Neutral"

// Normalizer converts AnalysisResults into ViewModels.
type Normalizer struct {
	log *zap.Logger
}

// New returns a Normalizer. A nil logger disables logging.
func New(log *zap.Logger) *Normalizer {
	return &Normalizer{log: logging.OrNop(log)}
}

// ConvertScore maps a raw sentiment score in [-10, 10] onto [0, 100].
// Inputs outside the raw range are clamped.
func ConvertScore(raw float64) int {
	if math.IsNaN(raw) {
		raw = 0
	}
	return clampPercent(math.Round(((raw + 10) / 20) * 100))
}

// LabelForScore is the display fallback label for a raw score.
func LabelForScore(raw float64) string {
	switch {
	case raw >= 7:
		return "Very Positive"
	case raw >= 3:
		return "Positive"
	case raw >= -3:
		return "Neutral"
	case raw >= -7:
		return "Negative"
	default:
		return "Very Negative"
	}
}

// Tone buckets a raw score for coloring.
type Tone int

const (
	TonePositive Tone = iota
	ToneNeutral
	ToneNegative
)

// ToneForScore returns the color bucket of a raw score.
func ToneForScore(raw float64) Tone {
	switch {
	case raw >= 3:
		return TonePositive
	case raw >= -3:
		return ToneNeutral
	default:
		return ToneNegative
	}
}

// Normalize derives the view-model from r.
func (n *Normalizer) Normalize(r *journal.AnalysisResult) journal.ViewModel {
	if r == nil {
		r = &journal.AnalysisResult{}
	}

	vm := journal.ViewModel{
		MoodScore:     ConvertScore(RawMoodScore(r)),
		DominantLabel: DominantLabel(r),
		Themes:        Themes(r),
		Insights:      Insights(r),
	}

	n.log.Debug("normalized result",
		zap.String("topic", r.Topic),
		zap.Int("mood_score", vm.MoodScore),
		zap.String("label", vm.DominantLabel),
		zap.Int("themes", len(vm.Themes)),
		zap.Int("insights", len(vm.Insights)),
	)
	return vm
}

// RawMoodScore picks the final overall score, else the fusion score, else 0.
// A present zero is honored.
func RawMoodScore(r *journal.AnalysisResult) float64 {
	if r.FinalSentiment != nil && r.FinalSentiment.OverallScore != nil {
		return *r.FinalSentiment.OverallScore
	}
	if r.FusionReport != nil && r.FusionReport.SentimentScore != nil {
		return *r.FusionReport.SentimentScore
	}
	return 0
}

// DominantLabel picks the final label, else the fusion label, else "Neutral".
// Blank labels count as absent.
func DominantLabel(r *journal.AnalysisResult) string {
	if r.FinalSentiment != nil && nonBlank(r.FinalSentiment.SentimentLabel) {
		return strings.TrimSpace(*r.FinalSentiment.SentimentLabel)
	}
	if r.FusionReport != nil && nonBlank(r.FusionReport.SentimentLabel) {
		return strings.TrimSpace(*r.FusionReport.SentimentLabel)
	}
	return DefaultLabel
}

// Themes builds the theme bars for the sources present in r.
func Themes(r *journal.AnalysisResult) []journal.Theme {
	themes := make([]journal.Theme, 0, 3)
	if r.LexiconReport != nil && r.LexiconReport.SentimentScore != nil {
		themes = append(themes, journal.Theme{
			Name:     ThemeText,
			Value:    ConvertScore(*r.LexiconReport.SentimentScore),
			ColorTag: journal.ColorPrimary,
		})
	}
	if r.VisionReport != nil && r.VisionReport.SentimentScore != nil {
		themes = append(themes, journal.Theme{
			Name:     ThemeVisual,
			Value:    ConvertScore(*r.VisionReport.SentimentScore),
			ColorTag: journal.ColorSecondary,
		})
	}
	if r.FusionReport != nil && r.FusionReport.Confidence != nil {
		themes = append(themes, journal.Theme{
			Name:     ThemeConfidence,
			Value:    clampPercent(math.Round(*r.FusionReport.Confidence)),
			ColorTag: journal.ColorPeace,
		})
	}
	return themes
}

// Insights merges the key findings of the fusion, lexicon and vision
// reports in that order, dropping blanks and keeping the first five.
// When nothing survives, three generic insights mention the resolved label.
func Insights(r *journal.AnalysisResult) []string {
	var out []string
	for _, rep := range []*journal.AgentReport{r.FusionReport, r.LexiconReport, r.VisionReport} {
		if rep == nil {
			continue
		}
		for _, f := range rep.KeyFindings {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			out = append(out, f)
			if len(out) == MaxInsights {
				return out
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	return FallbackInsights(DominantLabel(r))
}

// FallbackInsights is the insight list shown when no report had findings.
func FallbackInsights(label string) []string {
	return []string{
		"Your reflection has been analyzed across multiple dimensions.",
		"Overall sentiment detected: " + label,
		"The AI agents have processed your content successfully.",
	}
}

// MoodDescription is the sentence shown under the mood gauge.
func MoodDescription(vm journal.ViewModel) string {
	return "Your overall emotional state reflects " + strings.ToLower(vm.DominantLabel) +
		" energy. The analysis shows a sentiment score of " + strconv.Itoa(vm.MoodScore) + "/100"
}

func clampPercent(v float64) int {
	switch {
	case math.IsNaN(v):
		return 50
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return int(v)
}

func nonBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
