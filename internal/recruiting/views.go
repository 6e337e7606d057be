package recruiting

import (
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/store"
)

// ResumeView converts a stored resume into matcher input. When the record has
// no usable parsed profile the flat fields are used and quick is true.
func ResumeView(r *store.Resume) (resume *matching.ParsedResume, quick bool, err error) {
	if r == nil {
		return &matching.ParsedResume{}, true, nil
	}

	if len(r.ParsedData) > 0 {
		parsed, decodeErr := matching.DecodeParsedResume(r.ParsedData)
		if decodeErr == nil {
			if parsed.PersonalInfo.Name == "" {
				parsed.PersonalInfo.Name = r.Name
			}
			if _, ok := r.ParsedData["totalExperienceYears"]; !ok && parsed.TotalExperienceYears == 0 {
				parsed.TotalExperienceYears = r.ExperienceYears
			}
			return parsed, false, nil
		}
		err = decodeErr
	}

	return matching.MinimalResume(r.Name, r.Skills, r.ExperienceYears), true, err
}

func JobView(j *store.Job) *matching.JobPosting {
	if j == nil {
		return &matching.JobPosting{}
	}

	skills := make([]string, len(j.Skills))
	copy(skills, j.Skills)

	return &matching.JobPosting{
		ID:           j.ID,
		Title:        j.Title,
		Description:  j.Description,
		Requirements: j.Requirements,
		Skills:       skills,
		Experience:   j.Experience,
		Salary:       j.Salary,
	}
}

// JobRecord is the inverse of JobView, used when jobs are loaded from files.
func JobRecord(j *matching.JobPosting) *store.Job {
	skills := make([]string, len(j.Skills))
	copy(skills, j.Skills)

	return &store.Job{
		ID:           j.ID,
		Title:        j.Title,
		Description:  j.Description,
		Requirements: j.Requirements,
		Skills:       skills,
		Experience:   j.Experience,
		Salary:       j.Salary,
	}
}
