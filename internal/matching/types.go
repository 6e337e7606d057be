package matching

import "context"

// Recommendation is the discrete hiring tier derived from an overall score.
type Recommendation string

const (
	StrongMatch Recommendation = "STRONG_MATCH"
	GoodMatch   Recommendation = "GOOD_MATCH"
	WeakMatch   Recommendation = "WEAK_MATCH"
	NoMatch     Recommendation = "NO_MATCH"
)

const (
	strongThreshold = 85
	goodThreshold   = 70
	weakThreshold   = 50
)

// RecommendationFor maps an overall score onto a tier. Lower bounds are inclusive.
func RecommendationFor(score int) Recommendation {
	switch {
	case score >= strongThreshold:
		return StrongMatch
	case score >= goodThreshold:
		return GoodMatch
	case score >= weakThreshold:
		return WeakMatch
	default:
		return NoMatch
	}
}

// Valid reports whether r is one of the known tiers.
func (r Recommendation) Valid() bool {
	switch r {
	case StrongMatch, GoodMatch, WeakMatch, NoMatch:
		return true
	default:
		return false
	}
}

// SkillSet groups free-text skill names by category.
type SkillSet struct {
	Technical  []string `json:"technical" mapstructure:"technical"`
	Tools      []string `json:"tools" mapstructure:"tools"`
	Frameworks []string `json:"frameworks" mapstructure:"frameworks"`
	Databases  []string `json:"databases" mapstructure:"databases"`
	Soft       []string `json:"soft" mapstructure:"soft"`
}

type PersonalInfo struct {
	Name     string `json:"name,omitempty" mapstructure:"name"`
	Email    string `json:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" mapstructure:"phone"`
	Location string `json:"location,omitempty" mapstructure:"location"`
}

type WorkExperience struct {
	Position    string `json:"position" mapstructure:"position"`
	Company     string `json:"company" mapstructure:"company"`
	Description string `json:"description,omitempty" mapstructure:"description"`
}

type Education struct {
	Degree      string `json:"degree" mapstructure:"degree"`
	Institution string `json:"institution" mapstructure:"institution"`
}

type Project struct {
	Name         string   `json:"name" mapstructure:"name"`
	Description  string   `json:"description,omitempty" mapstructure:"description"`
	Technologies []string `json:"technologies,omitempty" mapstructure:"technologies"`
}

// ParsedResume is the structured snapshot of a candidate profile. Matchers never mutate it.
type ParsedResume struct {
	PersonalInfo         PersonalInfo     `json:"personalInfo" mapstructure:"personalInfo"`
	Summary              string           `json:"summary,omitempty" mapstructure:"summary"`
	Skills               SkillSet         `json:"skills" mapstructure:"skills"`
	Experience           []WorkExperience `json:"experience" mapstructure:"experience" validate:"dive"`
	Education            []Education      `json:"education" mapstructure:"education" validate:"dive"`
	TotalExperienceYears float64          `json:"totalExperienceYears" mapstructure:"totalExperienceYears" validate:"gte=0"`
	Projects             []Project        `json:"projects" mapstructure:"projects" validate:"dive"`
	Certifications       []string         `json:"certifications" mapstructure:"certifications"`
}

// JobPosting is the matching target.
type JobPosting struct {
	ID           string   `json:"id" mapstructure:"id" validate:"required"`
	Title        string   `json:"title" mapstructure:"title" validate:"required"`
	Description  string   `json:"description" mapstructure:"description"`
	Requirements string   `json:"requirements" mapstructure:"requirements"`
	Skills       []string `json:"skills" mapstructure:"skills"`
	Experience   string   `json:"experience,omitempty" mapstructure:"experience"`
	Salary       string   `json:"salary,omitempty" mapstructure:"salary"`
}

type DetailedAnalysis struct {
	MatchedSkills   []string `json:"matchedSkills"`
	MissingSkills   []string `json:"missingSkills"`
	ExperienceGap   string   `json:"experienceGap,omitempty"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	RedFlags        []string `json:"redFlags"`
	Recommendations []string `json:"recommendations"`
}

// MatchResult is a pure value describing compatibility between one resume and one job.
type MatchResult struct {
	OverallScore     int              `json:"overallScore"`
	SkillsMatch      float64          `json:"skillsMatch"`
	ExperienceMatch  float64          `json:"experienceMatch"`
	EducationMatch   float64          `json:"educationMatch"`
	Confidence       int              `json:"confidence"`
	DetailedAnalysis DetailedAnalysis `json:"detailedAnalysis"`
	Recommendation   Recommendation   `json:"recommendation"`
	ReasoningNotes   string           `json:"reasoningNotes"`
}

// Matcher scores a resume against a job. Implementations always return a
// well-formed result; failures degrade to a lower confidence instead of an error.
type Matcher interface {
	AnalyzeMatch(ctx context.Context, resume *ParsedResume, job *JobPosting) MatchResult
	QuickMatch(ctx context.Context, resume *ParsedResume, job *JobPosting) MatchResult
}
