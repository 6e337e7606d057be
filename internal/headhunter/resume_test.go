package headhunter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/store"
)

const resumeJSON = `{
  "id": "abc123",
  "title": "Go developer",
  "first_name": "Ivan",
  "last_name": "Petrov",
  "skills": "I like distributed systems",
  "skill_set": ["Go", "Kubernetes"],
  "total_experience": {"months": 50},
  "experience": [{"position": "Backend Engineer", "company": "Acme", "description": "Payments"}],
  "education": {"primary": [{"name": "MSU", "organization": "CS faculty", "result": ""}]},
  "certificate": [{"title": "CKA"}]
}`

func TestResumeDetailsToRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resumeJSON))
	}))
	defer srv.Close()

	client := New(nil, "token")
	client.APIURL = srv.URL

	details, err := client.GetResumeDetails(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.ID != "abc123" || details.Title != "Go developer" {
		t.Fatalf("unexpected details: %+v", details)
	}

	record, err := details.ToRecord("owner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.ID != "hh-abc123" || record.OwnerID != "owner" || record.Status != store.StatusCompleted {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Name != "Ivan Petrov" {
		t.Fatalf("unexpected name: %q", record.Name)
	}
	if record.ExperienceYears != 4.2 {
		t.Fatalf("expected 4.2 years, got %v", record.ExperienceYears)
	}

	parsed, err := matching.DecodeParsedResume(record.ParsedData)
	if err != nil {
		t.Fatalf("parsed data must decode: %v", err)
	}
	if len(parsed.Skills.Technical) != 2 || parsed.Skills.Technical[1] != "Kubernetes" {
		t.Fatalf("unexpected skills: %+v", parsed.Skills)
	}
	if len(parsed.Education) != 1 || parsed.Education[0].Degree != "CS faculty" {
		t.Fatalf("unexpected education: %+v", parsed.Education)
	}
	if len(parsed.Certifications) != 1 {
		t.Fatalf("unexpected certifications: %+v", parsed.Certifications)
	}
}

func TestGetMineResumes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/resumes/mine" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []any{
				map[string]any{"id": "1", "title": "Go developer"},
				map[string]any{"id": "2", "title": "SRE"},
			},
			"pages": 1,
		})
	}))
	defer srv.Close()

	client := New(nil, "token")
	client.APIURL = srv.URL

	resumes, err := client.GetMineResumes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resumes.Len() != 2 {
		t.Fatalf("expected 2 resumes, got %d", resumes.Len())
	}
	if r := resumes.FindByTitle("SRE"); r == nil || r.ID != "2" {
		t.Fatalf("unexpected lookup result: %+v", r)
	}
}
