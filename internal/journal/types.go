// Package journal provides the core types shared by the moodlog client:
// analysis requests, raw backend results and the normalized view-model.
package journal

import "strings"

// Platform is a social platform the backend may sample content from.
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
)

// Article count bounds accepted by the backend.
const (
	DefaultArticleCount = 5
	MinArticleCount     = 1
	MaxArticleCount     = 10

	// MaxTopicLength is the longest topic (in runes) the backend accepts.
	MaxTopicLength = 200
)

// DefaultPlatforms returns the platform set used when none is configured.
func DefaultPlatforms() []Platform {
	return []Platform{PlatformTikTok, PlatformInstagram, PlatformTwitter}
}

// ParsePlatform maps a configured name onto a known platform.
func ParsePlatform(s string) (Platform, bool) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformTikTok, PlatformInstagram, PlatformTwitter:
		return p, true
	}
	return "", false
}

// InputMode is the kind of content the user is submitting.
type InputMode int

const (
	ModeText   InputMode = iota // Free-form written reflection
	ModeImage                   // A local image file
	ModeSocial                  // An Instagram post or reel URL
)

func (m InputMode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeImage:
		return "image"
	case ModeSocial:
		return "social"
	}
	return "unknown"
}

// ParseInputMode is the inverse of InputMode.String.
func ParseInputMode(s string) (InputMode, bool) {
	switch s {
	case "text":
		return ModeText, true
	case "image":
		return ModeImage, true
	case "social":
		return ModeSocial, true
	}
	return ModeText, false
}

// Attachment carries the non-text payload of a submission. The backend
// contract only transports the topic, so attachments stay client-side.
type Attachment struct {
	Mode      InputMode
	ImagePath string // Absolute path of the selected image
	ImageName string // Base name shown to the user
	ImageSize int64  // Size in bytes
	Width     int    // Decoded image width
	Height    int    // Decoded image height
	URL       string // Social post URL
}

// AnalysisRequest is one submission to the analysis backend.
type AnalysisRequest struct {
	Topic        string
	ArticleCount int
	Platforms    []Platform
	Attachment   *Attachment
}

// AnalysisResult is the backend's answer to a successful analysis.
// Every nested field is optional; pointers distinguish absent from zero.
type AnalysisResult struct {
	Success         bool            `json:"success"`
	Topic           string          `json:"topic"`
	Platforms       []string        `json:"platforms,omitempty"`
	ContentAnalyzed *int            `json:"content_analyzed,omitempty"`
	Timestamp       string          `json:"timestamp,omitempty"`
	FinalSentiment  *FinalSentiment `json:"final_sentiment,omitempty"`
	LexiconReport   *AgentReport    `json:"lexicon_report,omitempty"`
	VisionReport    *AgentReport    `json:"vision_report,omitempty"`
	FusionReport    *AgentReport    `json:"fusion_report,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// FinalSentiment is the backend's consolidated verdict.
type FinalSentiment struct {
	OverallScore    *float64 `json:"overall_score,omitempty"`    // -10..10
	Confidence      *float64 `json:"confidence,omitempty"`       // 0..100
	SentimentLabel  *string  `json:"sentiment_label,omitempty"`  // e.g. "Positive"
	AnalysisQuality *string  `json:"analysis_quality,omitempty"` // e.g. "high"
}

// AgentReport is the output of one analysis agent (lexicon, vision or fusion).
type AgentReport struct {
	AgentName      string   `json:"agent_name,omitempty"`
	AnalysisType   string   `json:"analysis_type,omitempty"`
	SentimentScore *float64 `json:"sentiment_score,omitempty"` // -10..10
	SentimentLabel *string  `json:"sentiment_label,omitempty"`
	Confidence     *float64 `json:"confidence,omitempty"` // 0..100
	KeyFindings    []string `json:"key_findings,omitempty"`
	Timestamp      string   `json:"timestamp,omitempty"`
	RawOutput      string   `json:"raw_output,omitempty"`
}

// Reports returns the present agent reports in display order.
func (r *AnalysisResult) Reports() []NamedReport {
	if r == nil {
		return nil
	}
	var out []NamedReport
	for _, nr := range []NamedReport{
		{Title: "Lexicon Agent", Report: r.LexiconReport},
		{Title: "Vision Agent", Report: r.VisionReport},
		{Title: "Fusion Agent", Report: r.FusionReport},
	} {
		if nr.Report != nil {
			out = append(out, nr)
		}
	}
	return out
}

// NamedReport pairs a report with its card title.
type NamedReport struct {
	Title  string
	Report *AgentReport
}

// ColorTag selects the palette entry a theme bar is drawn with.
type ColorTag string

const (
	ColorPrimary   ColorTag = "primary"
	ColorSecondary ColorTag = "secondary"
	ColorPeace     ColorTag = "peace"
)

// Theme is one labelled bar on the results screen.
type Theme struct {
	Name     string   `json:"name"`
	Value    int      `json:"value"` // 0..100
	ColorTag ColorTag `json:"color_tag"`
}

// ViewModel is the display-ready form of an AnalysisResult. It is derived
// fresh from each result and never mutated afterwards.
type ViewModel struct {
	MoodScore     int      `json:"mood_score"` // 0..100
	DominantLabel string   `json:"dominant_label"`
	Themes        []Theme  `json:"themes"`
	Insights      []string `json:"insights"` // 1..5 entries
}
