package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/resume-matcher/internal/matching"
)

//go:embed match_result.schema.json
var matchResultSchema string

var schemaLoader = gojsonschema.NewStringLoader(matchResultSchema)

const (
	defaultConfidence = 80
	defaultNotes      = "AI analysis completed without additional notes."
)

// ValidationError lists the response fields that violated the expected shape.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a JSON field path.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "invalid match result: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidResponse
}

type responsePayload struct {
	OverallScore    float64  `json:"overallScore"`
	SkillsMatch     *float64 `json:"skillsMatch"`
	ExperienceMatch *float64 `json:"experienceMatch"`
	EducationMatch  *float64 `json:"educationMatch"`
	Confidence      *float64 `json:"confidence"`
	Recommendation  string   `json:"recommendation"`
	ReasoningNotes  *string  `json:"reasoningNotes"`

	DetailedAnalysis struct {
		MatchedSkills   []string `json:"matchedSkills"`
		MissingSkills   []string `json:"missingSkills"`
		ExperienceGap   *string  `json:"experienceGap"`
		Strengths       []string `json:"strengths"`
		Weaknesses      []string `json:"weaknesses"`
		RedFlags        []string `json:"redFlags"`
		Recommendations []string `json:"recommendations"`
	} `json:"detailedAnalysis"`
}

// parseResponse turns the raw service answer into a MatchResult. The reported
// recommendation is returned separately so callers can log disagreements with
// the tier derived from the score.
func parseResponse(raw string) (matching.MatchResult, string, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return matching.MatchResult{}, "", ErrEmptyResponse
	}

	if err := validateShape(cleaned); err != nil {
		return matching.MatchResult{}, "", err
	}

	var payload responsePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return matching.MatchResult{}, "", fmt.Errorf("%w: decode: %v", ErrInvalidResponse, err)
	}

	overall := clampScore(payload.OverallScore)
	score := int(math.Round(overall))

	confidence := float64(defaultConfidence)
	if payload.Confidence != nil {
		confidence = clampScore(*payload.Confidence)
	}

	notes := defaultNotes
	if payload.ReasoningNotes != nil && strings.TrimSpace(*payload.ReasoningNotes) != "" {
		notes = strings.TrimSpace(*payload.ReasoningNotes)
	}

	da := payload.DetailedAnalysis
	analysis := matching.DetailedAnalysis{
		MatchedSkills:   cleanList(da.MatchedSkills),
		MissingSkills:   cleanList(da.MissingSkills),
		Strengths:       cleanList(da.Strengths),
		Weaknesses:      cleanList(da.Weaknesses),
		RedFlags:        cleanList(da.RedFlags),
		Recommendations: cleanList(da.Recommendations),
	}
	if da.ExperienceGap != nil {
		analysis.ExperienceGap = strings.TrimSpace(*da.ExperienceGap)
	}

	return matching.MatchResult{
		OverallScore:     score,
		SkillsMatch:      subScore(payload.SkillsMatch, overall),
		ExperienceMatch:  subScore(payload.ExperienceMatch, overall),
		EducationMatch:   subScore(payload.EducationMatch, overall),
		Confidence:       int(math.Round(confidence)),
		DetailedAnalysis: analysis,
		Recommendation:   matching.RecommendationFor(score),
		ReasoningNotes:   notes,
	}, normalizeTier(payload.Recommendation), nil
}

func validateShape(document string) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(document))
	if err != nil {
		// The document is not parseable JSON.
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}

	return verr
}

// extractJSON strips markdown fences and any prose around the outermost object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return raw
	}
	return raw[start : end+1]
}

func subScore(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return clampScore(*v)
}

func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeTier(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
