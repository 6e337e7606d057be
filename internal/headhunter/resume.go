package headhunter

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/store"
)

type Resumes struct {
	Items []*Resume
}

type Resume struct {
	Title string `json:"title,omitempty"`
	ID    string `json:"id,omitempty"`
}

type ResumeDetails struct {
	ID    string
	Title string
	Raw   map[string]any
}

// hhResume is the part of the resume document used for matching.
type hhResume struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Skills          string   `json:"skills"`
	SkillSet        []string `json:"skill_set"`
	TotalExperience *struct {
		Months int `json:"months"`
	} `json:"total_experience"`
	Experience []struct {
		Position    string `json:"position"`
		Company     string `json:"company"`
		Description string `json:"description"`
	} `json:"experience"`
	Education struct {
		Primary []struct {
			Name         string `json:"name"`
			Organization string `json:"organization"`
			Result       string `json:"result"`
		} `json:"primary"`
	} `json:"education"`
	Certificate []struct {
		Title string `json:"title"`
	} `json:"certificate"`
}

func (c *Client) getResumes(ctx context.Context, id string) (*Resumes, error) {
	apiURLMineResumes := fmt.Sprintf("%s/resumes/%s", c.APIURL, id)

	items, err := c.GetItems(ctx, apiURLMineResumes, nil)
	if err != nil {
		return nil, err
	}

	var resumes []*Resume
	if err = decodeItems(items, &resumes); err != nil {
		return nil, err
	}

	return &Resumes{
		Items: resumes,
	}, nil
}

func (r *Resumes) Len() int {
	return len(r.Items)
}

func (r *Resumes) Titles() []string {
	ids := make([]string, 0, len(r.Items))

	for _, v := range r.Items {
		ids = append(ids, v.Title)
	}

	return ids
}

func (r *Resumes) FindByTitle(title string) *Resume {
	for _, resume := range r.Items {
		if resume.Title == title {
			return resume
		}
	}

	return nil
}

func (c *Client) GetResumeDetails(ctx context.Context, id string) (*ResumeDetails, error) {
	if id == "" {
		return nil, fmt.Errorf("resume id is required")
	}

	apiURL := fmt.Sprintf("%s/resumes/%s", c.APIURL, id)

	var raw map[string]any
	if err := c.getJSON(ctx, apiURL, nil, &raw); err != nil {
		return nil, err
	}

	if raw == nil {
		raw = make(map[string]any)
	}

	return &ResumeDetails{
		ID:    valueAsString(raw["id"]),
		Title: valueAsString(raw["title"]),
		Raw:   raw,
	}, nil
}

// ToRecord converts the hh.ru resume into a completed resume record whose
// ParsedData follows the ParsedResume layout.
func (d *ResumeDetails) ToRecord(ownerID string) (*store.Resume, error) {
	var src hhResume
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &src,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(d.Raw); err != nil {
		return nil, fmt.Errorf("decode resume %s: %w", d.ID, err)
	}

	parsed := matching.ParsedResume{
		PersonalInfo: matching.PersonalInfo{
			Name: strings.TrimSpace(src.FirstName + " " + src.LastName),
		},
		Summary: strings.TrimSpace(src.Skills),
		Skills:  matching.SkillSet{Technical: src.SkillSet},
	}
	if src.TotalExperience != nil {
		parsed.TotalExperienceYears = math.Round(float64(src.TotalExperience.Months)/12*10) / 10
	}
	for _, e := range src.Experience {
		parsed.Experience = append(parsed.Experience, matching.WorkExperience{
			Position:    e.Position,
			Company:     e.Company,
			Description: e.Description,
		})
	}
	for _, e := range src.Education.Primary {
		degree := e.Result
		if degree == "" {
			degree = e.Organization
		}
		parsed.Education = append(parsed.Education, matching.Education{Degree: degree, Institution: e.Name})
	}
	for _, c := range src.Certificate {
		parsed.Certifications = append(parsed.Certifications, c.Title)
	}
	parsed.Normalize()

	data, err := toMap(parsed)
	if err != nil {
		return nil, fmt.Errorf("encode resume %s: %w", d.ID, err)
	}

	name := parsed.PersonalInfo.Name
	if name == "" {
		name = src.Title
	}

	return &store.Resume{
		ID:              "hh-" + d.ID,
		OwnerID:         ownerID,
		Name:            name,
		Skills:          parsed.Skills.Technical,
		ExperienceYears: parsed.TotalExperienceYears,
		Status:          store.StatusCompleted,
		ParsedData:      data,
	}, nil
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func valueAsString(v any) string {
	if v == nil {
		return ""
	}

	switch typed := v.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
