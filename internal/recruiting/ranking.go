package recruiting

import (
	"math"
	"sort"

	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/store"
)

// ScoredResume pairs a resume with its match against one job.
type ScoredResume struct {
	Resume *store.Resume        `json:"resume"`
	Quick  bool                 `json:"quick"`
	Result matching.MatchResult `json:"result"`
}

type Summary struct {
	Total         int `json:"total"`
	AverageScore  int `json:"averageScore"`
	StrongMatches int `json:"strongMatches"`
	GoodMatches   int `json:"goodMatches"`
}

type Ranking struct {
	Job     *store.Job     `json:"job"`
	Results []ScoredResume `json:"results"`
	Best    *ScoredResume  `json:"best,omitempty"`
	Summary Summary        `json:"summary"`
}

// RankResults orders results by overall score, highest first. Equal scores
// keep their input order, so ranking an already ranked slice is a no-op.
func RankResults(results []ScoredResume) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Result.OverallScore > results[j].Result.OverallScore
	})
}

func Summarize(results []ScoredResume) Summary {
	summary := Summary{Total: len(results)}
	if len(results) == 0 {
		return summary
	}

	total := 0
	for _, r := range results {
		total += r.Result.OverallScore
		switch r.Result.Recommendation {
		case matching.StrongMatch:
			summary.StrongMatches++
		case matching.GoodMatch:
			summary.GoodMatches++
		}
	}
	summary.AverageScore = int(math.Round(float64(total) / float64(len(results))))

	return summary
}

func newRanking(job *store.Job, results []ScoredResume) *Ranking {
	RankResults(results)

	ranking := &Ranking{Job: job, Results: results, Summary: Summarize(results)}
	if len(results) > 0 {
		ranking.Best = &ranking.Results[0]
	}
	return ranking
}
