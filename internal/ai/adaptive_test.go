package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-matcher/internal/matching"
)

type stubGenerator struct {
	mu         sync.Mutex
	response   string
	err        error
	block      bool
	panicValue any
	prompts    []string
}

func (s *stubGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	if s.panicValue != nil {
		panic(s.panicValue)
	}
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string { return "stub-model" }

func (s *stubGenerator) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

const validResponse = `{
  "overallScore": 86.4,
  "skillsMatch": 90,
  "experienceMatch": 80,
  "educationMatch": 85,
  "confidence": 92,
  "detailedAnalysis": {
    "matchedSkills": ["React", "TypeScript"],
    "missingSkills": ["Node.js"],
    "experienceGap": null,
    "strengths": ["Strong frontend portfolio"],
    "weaknesses": [],
    "redFlags": ["Frequent job changes"],
    "recommendations": ["Probe backend exposure"]
  },
  "recommendation": "STRONG_MATCH",
  "reasoningNotes": "Solid React background."
}`

func testJob() *matching.JobPosting {
	return &matching.JobPosting{
		ID:           "job-1",
		Title:        "Frontend Developer",
		Requirements: "Build SPA applications",
		Skills:       []string{"React", "TypeScript", "Node.js"},
		Experience:   "от 3 лет",
	}
}

func testResume() *matching.ParsedResume {
	return &matching.ParsedResume{
		PersonalInfo:         matching.PersonalInfo{Name: "Anna"},
		Skills:               matching.SkillSet{Technical: []string{"react", "redux"}, Frameworks: []string{"express"}},
		Education:            []matching.Education{{Degree: "BSc", Institution: "MSU"}},
		TotalExperienceYears: 2,
	}
}

func newTestAdaptive(t *testing.T, gen Generator, opts Options) *Adaptive {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	matcher, err := NewAdaptive(gen, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return matcher
}

func TestAdaptiveAnalyzeMatch(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + validResponse + "\n```"}
	matcher := newTestAdaptive(t, stub, Options{})

	result := matcher.AnalyzeMatch(context.Background(), testResume(), testJob())

	if result.OverallScore != 86 {
		t.Fatalf("expected overall score 86, got %d", result.OverallScore)
	}
	if result.Recommendation != matching.StrongMatch {
		t.Fatalf("unexpected recommendation: %s", result.Recommendation)
	}
	if result.Confidence != 92 {
		t.Fatalf("expected confidence 92, got %d", result.Confidence)
	}
	if len(result.DetailedAnalysis.RedFlags) != 1 {
		t.Fatalf("expected red flags to be kept, got %+v", result.DetailedAnalysis.RedFlags)
	}
	if result.DetailedAnalysis.Weaknesses == nil {
		t.Fatalf("expected empty weaknesses list, got nil")
	}
	if result.ReasoningNotes != "Solid React background." {
		t.Fatalf("unexpected notes: %q", result.ReasoningNotes)
	}

	prompt := stub.lastPrompt()
	if !strings.Contains(prompt, `"totalExperienceYears": 2`) {
		t.Fatalf("expected resume json in prompt: %s", prompt)
	}
	if !strings.Contains(prompt, `"experience": "от 3 лет"`) {
		t.Fatalf("expected job json in prompt: %s", prompt)
	}
	if strings.Contains(prompt, "{{") {
		t.Fatalf("unreplaced placeholder in prompt: %s", prompt)
	}
}

func TestAdaptiveIgnoresProseAfterObject(t *testing.T) {
	stub := &stubGenerator{response: validResponse + "\nHope this helps!"}
	matcher := newTestAdaptive(t, stub, Options{})

	result := matcher.AnalyzeMatch(context.Background(), testResume(), testJob())

	if result.OverallScore != 86 {
		t.Fatalf("expected overall score 86, got %d", result.OverallScore)
	}
	if result.Confidence != 92 {
		t.Fatalf("expected service confidence 92, got %d", result.Confidence)
	}
}

func TestAdaptiveQuickMatchUsesAbbreviatedPrompt(t *testing.T) {
	stub := &stubGenerator{response: validResponse}
	matcher := newTestAdaptive(t, stub, Options{})

	resume := matching.MinimalResume("Ivan", []string{"Go", "Docker"}, 3)
	result := matcher.QuickMatch(context.Background(), resume, testJob())

	if result.Confidence != 92 {
		t.Fatalf("expected ai confidence, got %d", result.Confidence)
	}

	prompt := stub.lastPrompt()
	for _, want := range []string{"Candidate: Ivan", "Skills: Go, Docker", "Years of experience: 3", "Required skills: React, TypeScript, Node.js"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected %q in quick prompt: %s", want, prompt)
		}
	}
	if strings.Contains(prompt, "totalExperienceYears") {
		t.Fatalf("quick prompt must not embed the full resume json")
	}
}

func TestAdaptiveFallsBackOnFailures(t *testing.T) {
	cases := []struct {
		name string
		stub *stubGenerator
	}{
		{name: "non-json", stub: &stubGenerator{response: "I am sorry, I cannot evaluate this candidate."}},
		{name: "missing overall score", stub: &stubGenerator{response: `{"detailedAnalysis": {}, "recommendation": "GOOD_MATCH"}`}},
		{name: "missing detailed analysis", stub: &stubGenerator{response: `{"overallScore": 70, "recommendation": "GOOD_MATCH"}`}},
		{name: "missing recommendation", stub: &stubGenerator{response: `{"overallScore": 70, "detailedAnalysis": {}}`}},
		{name: "score as string", stub: &stubGenerator{response: `{"overallScore": "70", "detailedAnalysis": {}, "recommendation": "GOOD_MATCH"}`}},
		{name: "empty", stub: &stubGenerator{response: "   "}},
		{name: "service error", stub: &stubGenerator{err: errors.New("quota exceeded")}},
		{name: "timeout", stub: &stubGenerator{block: true}},
		{name: "panic", stub: &stubGenerator{panicValue: "boom"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			matcher := newTestAdaptive(t, tc.stub, Options{Timeout: 20 * time.Millisecond})
			job := testJob()

			for _, result := range []matching.MatchResult{
				matcher.AnalyzeMatch(context.Background(), testResume(), job),
				matcher.QuickMatch(context.Background(), testResume(), job),
			} {
				if result.Confidence > matching.FallbackConfidence {
					t.Fatalf("expected confidence <= %d, got %d", matching.FallbackConfidence, result.Confidence)
				}
				if result.Recommendation != matching.WeakMatch {
					t.Fatalf("expected WEAK_MATCH, got %s", result.Recommendation)
				}
				if len(result.DetailedAnalysis.MatchedSkills) != 0 {
					t.Fatalf("expected no matched skills, got %+v", result.DetailedAnalysis.MatchedSkills)
				}
				if strings.Join(result.DetailedAnalysis.MissingSkills, ",") != strings.Join(job.Skills, ",") {
					t.Fatalf("expected all job skills missing, got %+v", result.DetailedAnalysis.MissingSkills)
				}
				if !strings.Contains(result.ReasoningNotes, "technical error") {
					t.Fatalf("expected technical error note, got %q", result.ReasoningNotes)
				}
			}
		})
	}
}

func TestAdaptiveTimeoutIsEnforcedWhenContextIgnored(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	gen := generatorFunc(func(context.Context, string) (string, error) {
		<-release
		return validResponse, nil
	})
	matcher := newTestAdaptive(t, gen, Options{Timeout: 20 * time.Millisecond})

	started := time.Now()
	result := matcher.AnalyzeMatch(context.Background(), testResume(), testJob())

	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Fatalf("matcher did not respect timeout, took %s", elapsed)
	}
	if result.Confidence != matching.FallbackConfidence {
		t.Fatalf("expected fallback confidence, got %d", result.Confidence)
	}
}

func TestAdaptiveBasicFallbackMode(t *testing.T) {
	stub := &stubGenerator{err: errors.New("unavailable")}
	matcher := newTestAdaptive(t, stub, Options{Fallback: FallbackBasic})

	result := matcher.AnalyzeMatch(context.Background(), testResume(), testJob())

	if result.OverallScore != 51 {
		t.Fatalf("expected heuristic score 51, got %d", result.OverallScore)
	}
	if result.Confidence != matching.FallbackConfidence {
		t.Fatalf("expected confidence %d, got %d", matching.FallbackConfidence, result.Confidence)
	}
	if len(result.DetailedAnalysis.MatchedSkills) != 1 {
		t.Fatalf("expected heuristic matched skills, got %+v", result.DetailedAnalysis.MatchedSkills)
	}
	if !strings.Contains(result.ReasoningNotes, "technical error") {
		t.Fatalf("expected technical error note, got %q", result.ReasoningNotes)
	}
}

func TestAdaptiveLogsFallbackCause(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	stub := &stubGenerator{err: errors.New("quota exceeded")}
	matcher := newTestAdaptive(t, stub, Options{Logger: zap.New(core)})

	matcher.AnalyzeMatch(context.Background(), testResume(), testJob())

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warn entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["job_id"] != "job-1" {
		t.Fatalf("unexpected job_id field: %v", ctx["job_id"])
	}
	if ctx["error"] != "quota exceeded" {
		t.Fatalf("unexpected error field: %v", ctx["error"])
	}
}

func TestAdaptiveDerivesRecommendationFromScore(t *testing.T) {
	stub := &stubGenerator{response: `{"overallScore": 72, "detailedAnalysis": {}, "recommendation": "strong match"}`}
	matcher := newTestAdaptive(t, stub, Options{})

	result := matcher.AnalyzeMatch(context.Background(), testResume(), testJob())

	if result.Recommendation != matching.GoodMatch {
		t.Fatalf("expected GOOD_MATCH derived from score, got %s", result.Recommendation)
	}
	if result.SkillsMatch != 72 || result.ExperienceMatch != 72 || result.EducationMatch != 72 {
		t.Fatalf("expected missing sub-scores to default to the overall score: %+v", result)
	}
	if result.Confidence != defaultConfidence {
		t.Fatalf("expected default confidence, got %d", result.Confidence)
	}
	if result.ReasoningNotes == "" {
		t.Fatalf("expected default reasoning notes")
	}
}

func TestNewAdaptiveValidation(t *testing.T) {
	if _, err := NewAdaptive(nil, Options{}); err == nil {
		t.Fatal("expected error for nil generator")
	}
	if _, err := NewAdaptive(&stubGenerator{}, Options{Fallback: "retry"}); err == nil {
		t.Fatal("expected error for unknown fallback mode")
	}
}

func TestParseFallbackMode(t *testing.T) {
	cases := map[string]FallbackMode{
		"":                 FallbackTechnicalError,
		"basic":            FallbackBasic,
		" Technical-Error": FallbackTechnicalError,
	}
	for in, want := range cases {
		got, err := ParseFallbackMode(in)
		if err != nil {
			t.Fatalf("ParseFallbackMode(%q): unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseFallbackMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAdaptiveConcurrentCalls(t *testing.T) {
	stub := &stubGenerator{response: validResponse}
	matcher := newTestAdaptive(t, stub, Options{})

	var wg sync.WaitGroup
	results := make([]matching.MatchResult, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = matcher.AnalyzeMatch(context.Background(), testResume(), testJob())
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r.OverallScore != 86 {
			t.Fatalf("result %d: expected 86, got %d", i, r.OverallScore)
		}
	}
	if len(stub.prompts) != len(results) {
		t.Fatalf("expected one service call per match, got %d", len(stub.prompts))
	}
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func (f generatorFunc) Model() string { return "func" }
