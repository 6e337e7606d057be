package recruiting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/store"
)

func scored(id string, score int) ScoredResume {
	return ScoredResume{
		Resume: &store.Resume{ID: id},
		Result: matching.MatchResult{OverallScore: score, Recommendation: matching.RecommendationFor(score)},
	}
}

func ids(results []ScoredResume) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Resume.ID)
	}
	return out
}

func TestRankResultsKeepsInputOrderForTies(t *testing.T) {
	results := []ScoredResume{scored("a", 70), scored("b", 90), scored("c", 70), scored("d", 90)}

	RankResults(results)
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(results))

	RankResults(results)
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(results))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	summary := Summarize([]ScoredResume{scored("a", 40), scored("b", 85), scored("c", 70)})
	assert.Equal(t, Summary{Total: 3, AverageScore: 65, StrongMatches: 1, GoodMatches: 1}, summary)

	assert.Equal(t, 51, Summarize([]ScoredResume{scored("a", 50), scored("b", 51)}).AverageScore)
}

func TestNewRankingPicksMaximum(t *testing.T) {
	ranking := newRanking(&store.Job{ID: "job"}, []ScoredResume{scored("a", 10), scored("b", 99), scored("c", 99)})
	require.NotNil(t, ranking.Best)
	assert.Equal(t, "b", ranking.Best.Resume.ID)
}

func TestResumeView(t *testing.T) {
	rich := &store.Resume{
		Name: "Anna",
		ParsedData: map[string]any{
			"skills":               map[string]any{"technical": []any{"Go"}},
			"totalExperienceYears": "4",
		},
	}
	view, quick, err := ResumeView(rich)
	require.NoError(t, err)
	assert.False(t, quick)
	assert.Equal(t, "Anna", view.PersonalInfo.Name)
	assert.Equal(t, 4.0, view.TotalExperienceYears)

	noYears := &store.Resume{
		Name:            "Petr",
		ExperienceYears: 5,
		ParsedData: map[string]any{
			"skills":    map[string]any{"technical": []any{"Go"}},
			"education": []any{},
		},
	}
	view, quick, err = ResumeView(noYears)
	require.NoError(t, err)
	assert.False(t, quick)
	assert.Equal(t, 5.0, view.TotalExperienceYears)

	explicitZero := &store.Resume{
		Name:            "Inna",
		ExperienceYears: 5,
		ParsedData:      map[string]any{"totalExperienceYears": 0},
	}
	view, _, err = ResumeView(explicitZero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, view.TotalExperienceYears)

	flat := &store.Resume{Name: "Ivan", Skills: []string{"Go"}, ExperienceYears: 2}
	view, quick, err = ResumeView(flat)
	require.NoError(t, err)
	assert.True(t, quick)
	assert.Equal(t, []string{"Go"}, view.Skills.Technical)

	broken := &store.Resume{Name: "Olga", ParsedData: map[string]any{"totalExperienceYears": -3}}
	view, quick, err = ResumeView(broken)
	assert.Error(t, err)
	assert.True(t, quick)
	assert.Equal(t, "Olga", view.PersonalInfo.Name)
}

func TestJobViewCopiesSkills(t *testing.T) {
	job := &store.Job{ID: "j", Title: "T", Skills: []string{"Go"}}
	view := JobView(job)
	view.Skills[0] = "Rust"
	assert.Equal(t, "Go", job.Skills[0])

	assert.Equal(t, "j", JobRecord(view).ID)
}
