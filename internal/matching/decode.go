package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

// DecodeParsedResume converts an opaque stored blob into a ParsedResume. Numbers
// written as strings are accepted. The result is normalized and validated.
func DecodeParsedResume(raw map[string]any) (*ParsedResume, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("parsed resume data is empty")
	}

	var resume ParsedResume
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &resume,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode parsed resume: %w", err)
	}

	resume.Normalize()

	if err := ValidateResume(&resume); err != nil {
		return nil, err
	}

	return &resume, nil
}

// ValidateResume checks the structural constraints of a resume snapshot.
func ValidateResume(resume *ParsedResume) error {
	if resume == nil {
		return fmt.Errorf("resume is required")
	}
	if math.IsNaN(resume.TotalExperienceYears) {
		return fmt.Errorf("resume: totalExperienceYears is not a number")
	}
	if err := validate.Struct(resume); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	return nil
}

// ValidateJob checks the structural constraints of a job posting.
func ValidateJob(job *JobPosting) error {
	if job == nil {
		return fmt.Errorf("job is required")
	}
	if err := validate.Struct(job); err != nil {
		return fmt.Errorf("job: %w", err)
	}
	return nil
}

// Normalize replaces nil collections with empty ones and trims free text.
func (r *ParsedResume) Normalize() {
	r.Skills.Technical = nonNil(r.Skills.Technical)
	r.Skills.Tools = nonNil(r.Skills.Tools)
	r.Skills.Frameworks = nonNil(r.Skills.Frameworks)
	r.Skills.Databases = nonNil(r.Skills.Databases)
	r.Skills.Soft = nonNil(r.Skills.Soft)

	if r.Experience == nil {
		r.Experience = []WorkExperience{}
	}
	if r.Education == nil {
		r.Education = []Education{}
	}
	if r.Projects == nil {
		r.Projects = []Project{}
	}
	r.Certifications = nonNil(r.Certifications)

	r.PersonalInfo.Name = strings.TrimSpace(r.PersonalInfo.Name)
	r.Summary = strings.TrimSpace(r.Summary)
}

// MinimalResume builds the reduced view used when no parsed structure exists.
// The flat skill list is treated as technical skills.
func MinimalResume(name string, skills []string, years float64) *ParsedResume {
	if years < 0 || math.IsNaN(years) {
		years = 0
	}

	resume := &ParsedResume{
		PersonalInfo:         PersonalInfo{Name: name},
		Skills:               SkillSet{Technical: append([]string(nil), skills...)},
		TotalExperienceYears: years,
	}
	resume.Normalize()

	return resume
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
