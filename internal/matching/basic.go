package matching

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// BasicConfidence is reported by the full deterministic pass.
	BasicConfidence = 60
	// QuickConfidence is reported when only flat resume data was available.
	QuickConfidence = 70

	neutralSkillsScore     = 50
	neutralExperienceScore = 70
	educationPresentScore  = 80
	educationAbsentScore   = 60
)

var firstInteger = regexp.MustCompile(`\d+`)

// Basic is the deterministic keyword matcher. It performs no I/O and holds no state.
type Basic struct{}

var _ Matcher = Basic{}

func (Basic) AnalyzeMatch(_ context.Context, resume *ParsedResume, job *JobPosting) MatchResult {
	return Score(resume, job, BasicConfidence)
}

func (Basic) QuickMatch(_ context.Context, resume *ParsedResume, job *JobPosting) MatchResult {
	result := Score(resume, job, QuickConfidence)
	result.ReasoningNotes = "Quick heuristic match on flat resume data. " + result.ReasoningNotes
	return result
}

// Score computes the heuristic result with the given confidence. Nil inputs are
// treated as empty values.
func Score(resume *ParsedResume, job *JobPosting, confidence int) MatchResult {
	if resume == nil {
		resume = &ParsedResume{}
	}
	if job == nil {
		job = &JobPosting{}
	}

	required := RequiredSkills(job.Skills)
	matched, missing := SplitSkills(resumeSkills(resume.Skills), required)

	skills := float64(neutralSkillsScore)
	if len(required) > 0 {
		skills = math.Round(float64(len(matched)) / float64(len(required)) * 100)
	}

	years := resume.TotalExperienceYears
	if years < 0 || math.IsNaN(years) {
		years = 0
	}
	requiredYears, hasRequirement := RequiredYears(job.Experience)
	experience := ExperienceScore(years, requiredYears, hasRequirement)

	education := float64(educationAbsentScore)
	if len(resume.Education) > 0 {
		education = educationPresentScore
	}

	overall := WeightedScore(skills, experience, education)

	analysis := DetailedAnalysis{
		MatchedSkills:   matched,
		MissingSkills:   missing,
		Strengths:       []string{},
		Weaknesses:      []string{},
		RedFlags:        []string{},
		Recommendations: []string{},
	}

	if len(matched) > 0 {
		analysis.Strengths = append(analysis.Strengths,
			fmt.Sprintf("Possesses %d of %d required skills: %s", len(matched), len(required), strings.Join(matched, ", ")))
	}
	if len(missing) > 0 {
		analysis.Weaknesses = append(analysis.Weaknesses,
			fmt.Sprintf("Missing %d of %d required skills: %s", len(missing), len(required), strings.Join(missing, ", ")))
		analysis.Recommendations = append(analysis.Recommendations,
			"Develop or highlight experience with: "+strings.Join(missing, ", "))
	}

	if hasRequirement {
		if years >= float64(requiredYears) {
			analysis.Strengths = append(analysis.Strengths,
				fmt.Sprintf("Meets the experience requirement of %d years", requiredYears))
		} else {
			analysis.ExperienceGap = fmt.Sprintf("Requires %d years of experience, candidate has %s", requiredYears, formatYears(years))
			analysis.Weaknesses = append(analysis.Weaknesses, "Experience is below the stated requirement")
			analysis.Recommendations = append(analysis.Recommendations,
				"Emphasize projects and responsibilities that offset the experience gap")
		}
	}

	if len(resume.Education) > 0 {
		analysis.Strengths = append(analysis.Strengths, "Education history is provided")
	}

	if len(analysis.Recommendations) == 0 {
		analysis.Recommendations = append(analysis.Recommendations, "Proceed to an interview to confirm the fit")
	}

	return MatchResult{
		OverallScore:     overall,
		SkillsMatch:      skills,
		ExperienceMatch:  experience,
		EducationMatch:   education,
		Confidence:       confidence,
		DetailedAnalysis: analysis,
		Recommendation:   RecommendationFor(overall),
		ReasoningNotes:   basicNotes(len(matched), len(required), years, requiredYears, hasRequirement, len(resume.Education) > 0),
	}
}

// WeightedScore combines the sub-scores with weights 0.5/0.3/0.2. The sum is
// computed in tenths so that halves round up exactly.
func WeightedScore(skills, experience, education float64) int {
	score := int(math.Round((skills*5 + experience*3 + education*2) / 10))
	return clampInt(score, 0, 100)
}

// ExperienceScore applies the step thresholds to the candidate's years.
func ExperienceScore(years float64, requiredYears int, hasRequirement bool) float64 {
	if !hasRequirement {
		return neutralExperienceScore
	}

	required := float64(requiredYears)
	switch {
	case years >= required:
		return 100
	case years >= 0.7*required:
		return 80
	case years >= 0.5*required:
		return 60
	case years > 0:
		return 40
	default:
		return 20
	}
}

// RequiredYears extracts the first integer from a free-text requirement such as
// "3-5 years" or "от 3 лет". It reports false when no integer is present.
// Numbers that do not fit are clamped to math.MaxInt32.
func RequiredYears(experience string) (int, bool) {
	raw := firstInteger.FindString(experience)
	if raw == "" {
		return 0, false
	}

	years, err := strconv.Atoi(raw)
	if err != nil || years > math.MaxInt32 {
		return math.MaxInt32, true
	}

	return years, true
}

// RequiredSkills trims the job's skill list, dropping blanks and
// case-insensitive duplicates. The first spelling of each skill is kept.
func RequiredSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		trimmed := strings.TrimSpace(skill)
		key := strings.ToLower(trimmed)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}

// SplitSkills partitions required skills into matched and missing using
// bidirectional substring containment on lower-cased names. Short names can
// produce false positives ("go" matches "mongodb"); this is a known weakness
// of the heuristic and is kept for score compatibility.
func SplitSkills(resume, required []string) (matched, missing []string) {
	matched = make([]string, 0, len(required))
	missing = make([]string, 0, len(required))

	normalized := make([]string, 0, len(resume))
	for _, skill := range resume {
		if s := normalizeSkill(skill); s != "" {
			normalized = append(normalized, s)
		}
	}

	for _, skill := range required {
		target := normalizeSkill(skill)
		if target != "" && containsEither(normalized, target) {
			matched = append(matched, skill)
			continue
		}
		missing = append(missing, skill)
	}

	return matched, missing
}

func containsEither(resume []string, target string) bool {
	for _, r := range resume {
		if strings.Contains(target, r) || strings.Contains(r, target) {
			return true
		}
	}
	return false
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// resumeSkills flattens the hard-skill categories. Soft skills do not take part in overlap.
func resumeSkills(set SkillSet) []string {
	out := make([]string, 0, len(set.Technical)+len(set.Tools)+len(set.Frameworks)+len(set.Databases))
	out = append(out, set.Technical...)
	out = append(out, set.Tools...)
	out = append(out, set.Frameworks...)
	out = append(out, set.Databases...)
	return out
}

func basicNotes(matched, required int, years float64, requiredYears int, hasRequirement, hasEducation bool) string {
	var b strings.Builder
	b.WriteString("Heuristic keyword analysis. ")

	if required == 0 {
		b.WriteString("The job lists no required skills, a neutral skills score was applied. ")
	} else {
		fmt.Fprintf(&b, "Matched %d of %d required skills. ", matched, required)
	}

	if hasRequirement {
		fmt.Fprintf(&b, "Candidate has %s years against %d required. ", formatYears(years), requiredYears)
	} else {
		b.WriteString("No parseable experience requirement, a neutral experience score was applied. ")
	}

	if hasEducation {
		b.WriteString("Education is listed.")
	} else {
		b.WriteString("No education is listed.")
	}

	return b.String()
}

func formatYears(years float64) string {
	return strconv.FormatFloat(years, 'f', -1, 64)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
