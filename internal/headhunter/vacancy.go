package headhunter

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/spigell/resume-matcher/internal/store"
)

type Vacancies struct {
	Items []*Vacancy
}

type NamedEntry struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Salary struct {
	From     int    `json:"from,omitempty"`
	To       int    `json:"to,omitempty"`
	Currency string `json:"currency,omitempty"`
	Gross    bool   `json:"gross,omitempty"`
}

type Employer struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
}

type Snippet struct {
	Requirement    string `json:"requirement,omitempty"`
	Responsibility string `json:"responsibility,omitempty"`
}

type Vacancy struct {
	ID           string       `json:"id,omitempty"`
	Name         string       `json:"name,omitempty"`
	Area         NamedEntry   `json:"area,omitempty"`
	Salary       *Salary      `json:"salary,omitempty"`
	Experience   NamedEntry   `json:"experience,omitempty"`
	Schedule     NamedEntry   `json:"schedule,omitempty"`
	Employment   NamedEntry   `json:"employment,omitempty"`
	Employer     Employer     `json:"employer,omitempty"`
	AlternateURL string       `json:"alternate_url,omitempty"`
	Description  string       `json:"description,omitempty"`
	KeySkills    []NamedEntry `json:"key_skills,omitempty"`
	Archived     bool         `json:"archived,omitempty"`
	Snippet      Snippet      `json:"snippet,omitempty"`
	PublishedAt  string       `json:"published_at,omitempty"`
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

func (v *Vacancies) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, vacancy := range v.Items {
		ids = append(ids, vacancy.ID)
	}
	return ids
}

// ToJob converts the vacancy into a job record. The HTML description is
// flattened to text; the snippet requirement becomes Requirements.
func (va *Vacancy) ToJob() (*store.Job, error) {
	description, err := HTMLToText(va.Description)
	if err != nil {
		return nil, fmt.Errorf("vacancy %s description: %w", va.ID, err)
	}

	requirements, err := HTMLToText(va.Snippet.Requirement)
	if err != nil {
		return nil, fmt.Errorf("vacancy %s requirement: %w", va.ID, err)
	}

	skills := make([]string, 0, len(va.KeySkills))
	for _, s := range va.KeySkills {
		if name := strings.TrimSpace(s.Name); name != "" {
			skills = append(skills, name)
		}
	}

	job := &store.Job{
		ID:           va.ID,
		Title:        strings.TrimSpace(va.Name),
		Description:  description,
		Requirements: requirements,
		Skills:       skills,
		Experience:   va.Experience.Name,
		Salary:       va.Salary.String(),
	}

	if published, err := time.Parse("2006-01-02T15:04:05-0700", va.PublishedAt); err == nil {
		job.CreatedAt = published.UTC()
	}

	return job, nil
}

func (s *Salary) String() string {
	if s == nil || (s.From == 0 && s.To == 0) {
		return ""
	}

	var amount string
	switch {
	case s.From > 0 && s.To > 0:
		amount = fmt.Sprintf("%d–%d", s.From, s.To)
	case s.From > 0:
		amount = fmt.Sprintf("from %d", s.From)
	default:
		amount = fmt.Sprintf("up to %d", s.To)
	}

	return strings.TrimSpace(amount + " " + s.Currency)
}

const blockSelectors = "p, li, div, h1, h2, h3, h4, h5, h6, tr"

// HTMLToText strips markup, keeping one line per block element.
func HTMLToText(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	doc.Find("script, style").Remove()
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithNodes(textNode("\n"))
	})
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.AppendNodes(textNode("\n"))
	})
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependNodes(textNode("- "))
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n"), nil
}

func textNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}
