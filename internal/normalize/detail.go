package normalize

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/f3rmion/moodlog/internal/journal"
	"go.uber.org/zap"
)

// fencedJSON matches the first ```json fenced block of an agent's raw output.
var fencedJSON = regexp.MustCompile("```json\\n([\\s\\S]*?)\\n```")

// ErrNoEmbedded is returned by ExtractEmbedded when raw output carries no
// fenced JSON block.
var ErrNoEmbedded = errors.New("no embedded json block")

// ExtractEmbedded parses the first fenced JSON block of raw. It is the
// strict form of Normalizer.Embedded.
func ExtractEmbedded(raw string) (map[string]any, error) {
	m := fencedJSON.FindStringSubmatch(raw)
	if m == nil {
		return nil, ErrNoEmbedded
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(m[1]), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrNoEmbedded
	}
	return obj, nil
}

// Embedded returns the structured object embedded in raw, if any. Parse
// failures are logged and reported as absent.
func (n *Normalizer) Embedded(raw string) (map[string]any, bool) {
	obj, err := ExtractEmbedded(raw)
	switch {
	case err == nil:
		return obj, true
	case errors.Is(err, ErrNoEmbedded):
		return nil, false
	default:
		n.log.Debug("could not parse embedded analysis", zap.Error(err))
		return nil, false
	}
}

// Detail is the structured analysis a fusion agent may embed in its raw output.
type Detail struct {
	AgentName           string
	AnalysisType        string
	FinalScore          *float64
	Confidence          *float64
	AlignmentStatus     string
	TrueSentiment       string
	SarcasmDetected     *bool
	Contradictions      []string
	HasContradictions   bool // the field was present, even if empty
	Synthesis           string
	Recommendation      string
	ComparativeAnalysis string // text_vs_visual.comparative_analysis

	Raw map[string]any
}

// Detail extracts the detailed analysis of a report, or nil when the
// report has no parseable embedded object.
func (n *Normalizer) Detail(rep *journal.AgentReport) *Detail {
	if rep == nil {
		return nil
	}
	obj, ok := n.Embedded(rep.RawOutput)
	if !ok {
		return nil
	}
	return detailFromMap(obj)
}

// ParseDetail extracts the detailed analysis embedded in raw, or nil.
func ParseDetail(raw string) *Detail {
	obj, err := ExtractEmbedded(raw)
	if err != nil {
		return nil
	}
	return detailFromMap(obj)
}

func detailFromMap(obj map[string]any) *Detail {
	d := &Detail{
		AgentName:       str(obj["agent_name"]),
		AnalysisType:    str(obj["analysis_type"]),
		FinalScore:      num(obj["final_sentiment_score"]),
		Confidence:      num(obj["confidence"]),
		AlignmentStatus: str(obj["alignment_status"]),
		TrueSentiment:   str(obj["true_sentiment"]),
		Synthesis:       str(obj["synthesis"]),
		Recommendation:  str(obj["recommendation"]),
		Raw:             obj,
	}
	if b, ok := obj["sarcasm_detected"].(bool); ok {
		d.SarcasmDetected = &b
	}
	if v, ok := obj["contradictions"]; ok {
		d.HasContradictions = true
		switch c := v.(type) {
		case []any:
			for _, item := range c {
				if s := str(item); s != "" {
					d.Contradictions = append(d.Contradictions, s)
				}
			}
		case string:
			if strings.TrimSpace(c) != "" {
				d.Contradictions = []string{c}
			}
		}
	}
	if tv, ok := obj["text_vs_visual"].(map[string]any); ok {
		d.ComparativeAnalysis = str(tv["comparative_analysis"])
	}
	return d
}

// PrettyRaw renders the embedded object as indented JSON.
func (d *Detail) PrettyRaw() string {
	if d == nil || d.Raw == nil {
		return ""
	}
	out, err := json.MarshalIndent(d.Raw, "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}

// Synthesis summarizes a free-text agent output: up to three substantial
// prose lines, else the head of the text.
func Synthesis(text string) string {
	var relevant []string
	for _, line := range strings.Split(text, "\n") {
		if len(line) > 50 &&
			!strings.HasPrefix(line, "#") &&
			!strings.HasPrefix(line, "-") &&
			!strings.Contains(line, "score:") {
			relevant = append(relevant, line)
			if len(relevant) == 3 {
				break
			}
		}
	}
	if len(relevant) > 0 {
		return truncateRunes(strings.Join(relevant, " "), 500) + "..."
	}
	return truncateRunes(text, 500) + "..."
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		out, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(out)
	}
}

func num(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return &f
		}
	}
	return nil
}
