package matching

import "strings"

const (
	// FallbackConfidence is the ceiling reported when the reasoning service failed.
	FallbackConfidence = 30

	fallbackScore = 50

	technicalErrorNote = "AI analysis was unavailable due to a technical error; this is a placeholder score and should be reviewed manually."
)

// TechnicalErrorResult is returned when the reasoning service could not produce
// a usable answer. Every job skill is reported as missing.
func TechnicalErrorResult(job *JobPosting) MatchResult {
	missing := []string{}
	if job != nil {
		missing = append(missing, job.Skills...)
	}

	return MatchResult{
		OverallScore:    fallbackScore,
		SkillsMatch:     fallbackScore,
		ExperienceMatch: fallbackScore,
		EducationMatch:  fallbackScore,
		Confidence:      FallbackConfidence,
		DetailedAnalysis: DetailedAnalysis{
			MatchedSkills:   []string{},
			MissingSkills:   missing,
			Strengths:       []string{},
			Weaknesses:      []string{},
			RedFlags:        []string{},
			Recommendations: []string{"Retry the analysis later or review the candidate manually"},
		},
		Recommendation: WeakMatch,
		ReasoningNotes: technicalErrorNote,
	}
}

// Degraded lowers a heuristic result to fallback confidence and explains why.
func Degraded(result MatchResult) MatchResult {
	if result.Confidence > FallbackConfidence {
		result.Confidence = FallbackConfidence
	}

	notes := strings.TrimSpace(result.ReasoningNotes)
	if notes == "" {
		result.ReasoningNotes = technicalErrorNote
	} else {
		result.ReasoningNotes = technicalErrorNote + " Heuristic result follows. " + notes
	}

	return result
}
