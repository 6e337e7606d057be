package ai

import (
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", raw: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose around", raw: "Here you go: {\"a\":1} hope it helps", want: `{"a":1}`},
		{name: "trailing prose", raw: "{\"a\":1}\nHope this helps", want: `{"a":1}`},
		{name: "fenced with trailing prose", raw: "```json\n{\"a\":{\"b\":2}}\n```\nLet me know.", want: `{"a":{"b":2}}`},
		{name: "no object", raw: "nothing here", want: "nothing here"},
		{name: "blank", raw: "  \n ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSON(tc.raw); got != tc.want {
				t.Fatalf("extractJSON(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestParseResponseClampsScores(t *testing.T) {
	result, reported, err := parseResponse(`{
		"overallScore": 140,
		"skillsMatch": -5,
		"confidence": 101,
		"detailedAnalysis": {"matchedSkills": [" Go ", ""], "experienceGap": " none "},
		"recommendation": "strong-match",
		"reasoningNotes": null
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.OverallScore != 100 {
		t.Fatalf("expected overall 100, got %d", result.OverallScore)
	}
	if result.SkillsMatch != 0 {
		t.Fatalf("expected skills 0, got %v", result.SkillsMatch)
	}
	if result.Confidence != 100 {
		t.Fatalf("expected confidence 100, got %d", result.Confidence)
	}
	if reported != "STRONG_MATCH" {
		t.Fatalf("unexpected reported tier %q", reported)
	}
	if len(result.DetailedAnalysis.MatchedSkills) != 1 || result.DetailedAnalysis.MatchedSkills[0] != "Go" {
		t.Fatalf("unexpected matched skills %+v", result.DetailedAnalysis.MatchedSkills)
	}
	if result.DetailedAnalysis.ExperienceGap != "none" {
		t.Fatalf("unexpected experience gap %q", result.DetailedAnalysis.ExperienceGap)
	}
	if result.ReasoningNotes != defaultNotes {
		t.Fatalf("expected default notes, got %q", result.ReasoningNotes)
	}
}

func TestParseResponseReportsFieldErrors(t *testing.T) {
	_, _, err := parseResponse(`{"overallScore": "high", "detailedAnalysis": {}, "recommendation": "GOOD_MATCH"}`)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Errors) == 0 || verr.Errors[0].Field != "overallScore" {
		t.Fatalf("expected overallScore violation, got %+v", verr.Errors)
	}
}

func TestParseResponseRejectsMalformedJSON(t *testing.T) {
	_, _, err := parseResponse(`{"overallScore": 70,`)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}

	_, _, err = parseResponse("```json\n```")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNormalizeTier(t *testing.T) {
	cases := map[string]string{
		"strong match": "STRONG_MATCH",
		" no-match ":   "NO_MATCH",
		"GOOD_MATCH":   "GOOD_MATCH",
	}
	for in, want := range cases {
		if got := normalizeTier(in); got != want {
			t.Fatalf("normalizeTier(%q) = %q, want %q", in, got, want)
		}
	}
}
