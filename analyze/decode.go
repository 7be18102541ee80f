package analyze

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/speccanvas/speccanvas/spec"
)

// remoteScoreSchema is the JSON Schema a model response must satisfy before
// it is trusted. Validation failure is handled like any transport failure:
// the pass falls back to the heuristic scorer.
const remoteScoreSchema = `{
  "type": "object",
  "required": ["overall", "completeness", "ambiguity", "consistency", "groundedness"],
  "properties": {
    "overall": {"type": "number"},
    "completeness": {"$ref": "#/definitions/dimension"},
    "ambiguity": {"$ref": "#/definitions/dimension"},
    "consistency": {"$ref": "#/definitions/dimension"},
    "groundedness": {"$ref": "#/definitions/dimension"},
    "issues": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["message"],
        "properties": {
          "severity": {"type": "string"},
          "dimension": {"type": "string"},
          "nodeId": {"type": "string"},
          "field": {"type": "string"},
          "message": {"type": "string"}
        }
      }
    },
    "suggestions": {"type": "array", "items": {"type": "string"}}
  },
  "definitions": {
    "dimension": {
      "type": "object",
      "required": ["score"],
      "properties": {
        "score": {"type": "number"},
        "details": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

var remoteScoreSchemaLoader = gojsonschema.NewStringLoader(remoteScoreSchema)

// remoteScore is the typed shape of a validated model response.
type remoteScore struct {
	Overall      float64         `json:"overall"`
	Completeness remoteDimension `json:"completeness"`
	Ambiguity    remoteDimension `json:"ambiguity"`
	Consistency  remoteDimension `json:"consistency"`
	Groundedness remoteDimension `json:"groundedness"`
	Issues       []remoteIssue   `json:"issues"`
	Suggestions  []string        `json:"suggestions"`
}

type remoteDimension struct {
	Score   float64  `json:"score"`
	Details []string `json:"details"`
}

type remoteIssue struct {
	Severity  string `json:"severity"`
	Dimension string `json:"dimension"`
	NodeID    string `json:"nodeId"`
	Field     string `json:"field"`
	Message   string `json:"message"`
}

// decodeRemoteScore validates and converts a raw model response into a
// Score. The response must be raw JSON; fenced or prefixed output is
// rejected. All scores are clamped, absent arrays default to empty, and
// unrecognized issue severities and dimensions get conservative defaults.
func decodeRemoteScore(content string) (*spec.Score, error) {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	result, err := gojsonschema.Validate(remoteScoreSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("response does not match score schema: %s", firstSchemaError(result))
	}

	var rs remoteScore
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("decode score: %w", err)
	}

	s := &spec.Score{
		Overall:      spec.Clamp(int(rs.Overall + 0.5)),
		Completeness: toDimensionScore(rs.Completeness),
		Ambiguity:    toDimensionScore(rs.Ambiguity),
		Consistency:  toDimensionScore(rs.Consistency),
		Groundedness: toDimensionScore(rs.Groundedness),
		Issues:       make([]spec.Issue, 0, len(rs.Issues)),
		Suggestions:  rs.Suggestions,
		AnalyzedAt:   time.Now(),
	}
	if s.Suggestions == nil {
		s.Suggestions = []string{}
	}

	for _, ri := range rs.Issues {
		s.Issues = append(s.Issues, normalizeIssue(ri))
	}

	return s, nil
}

func toDimensionScore(d remoteDimension) spec.DimensionScore {
	details := d.Details
	if details == nil {
		details = []string{}
	}
	return spec.DimensionScore{
		Score:   spec.Clamp(int(d.Score + 0.5)),
		Details: details,
	}
}

// normalizeIssue applies defaults for absent or unrecognized enum values:
// severity falls back to warning, dimension to completeness.
func normalizeIssue(ri remoteIssue) spec.Issue {
	severity := spec.Severity(ri.Severity)
	if !severity.IsValid() {
		severity = spec.SeverityWarning
	}
	dimension := spec.Dimension(ri.Dimension)
	if !dimension.IsValid() {
		dimension = spec.DimCompleteness
	}
	return spec.Issue{
		Severity:  severity,
		Dimension: dimension,
		NodeID:    ri.NodeID,
		Field:     ri.Field,
		Message:   ri.Message,
	}
}

func firstSchemaError(result *gojsonschema.Result) string {
	if errs := result.Errors(); len(errs) > 0 {
		return errs[0].String()
	}
	return "unknown validation error"
}
