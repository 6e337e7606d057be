package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/resume-matcher/internal/matching"
)

//go:embed prompt.md
var promptTemplate string

//go:embed quick_prompt.md
var quickPromptTemplate string

const notSpecified = "not specified"

func buildPrompt(resume *matching.ParsedResume, job *matching.JobPosting) (string, error) {
	resumeJSON, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal resume payload: %w", err)
	}

	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{RESUME_JSON}}\n\nJob:\n{{JOB_JSON}}\n\nJSON Response:"
	}

	return strings.NewReplacer(
		"{{RESUME_JSON}}", string(resumeJSON),
		"{{JOB_JSON}}", string(jobJSON),
	).Replace(template), nil
}

func buildQuickPrompt(resume *matching.ParsedResume, job *matching.JobPosting) string {
	skills := make([]string, 0)
	skills = append(skills, resume.Skills.Technical...)
	skills = append(skills, resume.Skills.Tools...)
	skills = append(skills, resume.Skills.Frameworks...)
	skills = append(skills, resume.Skills.Databases...)

	return strings.NewReplacer(
		"{{NAME}}", orNotSpecified(resume.PersonalInfo.Name),
		"{{SKILLS}}", orNotSpecified(strings.Join(skills, ", ")),
		"{{YEARS}}", strconv.FormatFloat(resume.TotalExperienceYears, 'f', -1, 64),
		"{{JOB_TITLE}}", orNotSpecified(job.Title),
		"{{JOB_SKILLS}}", orNotSpecified(strings.Join(job.Skills, ", ")),
		"{{JOB_EXPERIENCE}}", orNotSpecified(job.Experience),
		"{{JOB_REQUIREMENTS}}", orNotSpecified(job.Requirements),
	).Replace(quickPromptTemplate)
}

func orNotSpecified(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return notSpecified
	}
	return s
}
