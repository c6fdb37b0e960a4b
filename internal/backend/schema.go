package backend

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// resultSchema describes the success body of POST /api/analyze loosely
// enough to accept any backend version, while rejecting bodies whose
// fields would decode into the wrong Go types.
const resultSchema = `{
  "type": "object",
  "required": ["success"],
  "properties": {
    "success": {"type": "boolean"},
    "topic": {"type": ["string", "null"]},
    "error": {"type": ["string", "null"]},
    "timestamp": {"type": ["string", "null"]},
    "platforms": {"type": ["array", "null"], "items": {"type": ["string", "null"]}},
    "content_analyzed": {"type": ["integer", "null"]},
    "final_sentiment": {
      "type": ["object", "null"],
      "properties": {
        "overall_score": {"type": ["number", "null"]},
        "confidence": {"type": ["number", "null"]},
        "sentiment_label": {"type": ["string", "null"]},
        "analysis_quality": {"type": ["string", "null"]}
      }
    },
    "lexicon_report": {"$ref": "#/definitions/report"},
    "vision_report": {"$ref": "#/definitions/report"},
    "fusion_report": {"$ref": "#/definitions/report"}
  },
  "definitions": {
    "report": {
      "type": ["object", "null"],
      "properties": {
        "agent_name": {"type": ["string", "null"]},
        "analysis_type": {"type": ["string", "null"]},
        "sentiment_score": {"type": ["number", "null"]},
        "sentiment_label": {"type": ["string", "null"]},
        "confidence": {"type": ["number", "null"]},
        "key_findings": {"type": ["array", "null"], "items": {"type": ["string", "null"]}},
        "timestamp": {"type": ["string", "null"]},
        "raw_output": {"type": ["string", "null"]}
      }
    }
  }
}`

var resultSchemaLoader = gojsonschema.NewStringLoader(resultSchema)

// validateResult checks body against resultSchema.
func validateResult(body []byte) error {
	res, err := gojsonschema.Validate(resultSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validating response: %w", err)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("response does not match schema: %s", strings.Join(msgs, "; "))
}
