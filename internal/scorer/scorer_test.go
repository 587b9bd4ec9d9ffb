package scorer

import (
	"math"
	"sort"
	"testing"

	"skillfit-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitVector(dim, hot int) []float64 {
	v := make([]float64, dim)
	v[hot] = 1.0
	return v
}

func TestCosineSimilarity(t *testing.T) {
	a := unitVector(384, 0)
	b := unitVector(384, 0)
	c := unitVector(384, 1)

	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity(a, c), 1e-9)

	// 反向向量
	neg := make([]float64, 384)
	neg[0] = -1.0
	assert.InDelta(t, -1.0, CosineSimilarity(a, neg), 1e-9)
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	a := unitVector(384, 3)
	zero := make([]float64, 384)

	assert.Equal(t, 0.0, CosineSimilarity(a, zero))
	assert.Equal(t, 0.0, CosineSimilarity(zero, zero))
	assert.Equal(t, 0.0, CosineSimilarity(nil, a))
}

func TestMatchScoreIdenticalVectors(t *testing.T) {
	user := &types.UserVectors{
		GlobalVector: unitVector(384, 0),
		SkillVector:  unitVector(384, 0),
	}
	score := MatchScore(user, unitVector(384, 0), unitVector(384, 0), DefaultWeights())
	assert.Equal(t, 100.0, score)
}

func TestMatchScoreOrthogonalVectors(t *testing.T) {
	user := &types.UserVectors{
		GlobalVector: unitVector(384, 0),
		SkillVector:  unitVector(384, 1),
	}
	score := MatchScore(user, unitVector(384, 2), unitVector(384, 3), DefaultWeights())
	assert.Equal(t, 0.0, score)
}

func TestMatchScoreNeverNegativeOrNaN(t *testing.T) {
	user := &types.UserVectors{
		GlobalVector: []float64{-1, 0, 0},
		SkillVector:  []float64{-1, 0, 0},
	}
	// 完全反向 → raw为负, 必须被钳到0
	score := MatchScore(user, []float64{1, 0, 0}, []float64{1, 0, 0}, DefaultWeights())
	assert.Equal(t, 0.0, score)

	// 对抗性权重也不能越界
	adversarial := Weights{Skill: 1000, Global: -500}
	score = MatchScore(user, []float64{1, 0, 0}, []float64{-1, 0, 0}, adversarial)
	assert.False(t, math.IsNaN(score))
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestMatchScoreWeightSplit(t *testing.T) {
	// 技能向量完全一致, 全局向量完全不相关 → 得分等于技能权重*100
	user := &types.UserVectors{
		GlobalVector: unitVector(384, 0),
		SkillVector:  unitVector(384, 1),
	}
	score := MatchScore(user, unitVector(384, 2), unitVector(384, 1), DefaultWeights())
	assert.Equal(t, 60.0, score)

	score = MatchScore(user, unitVector(384, 2), unitVector(384, 1), Weights{Skill: 0.8, Global: 0.2})
	assert.Equal(t, 80.0, score)
}

func TestScoreAll(t *testing.T) {
	user := &types.UserVectors{
		GlobalVector: unitVector(384, 0),
		SkillVector:  unitVector(384, 0),
	}

	jobs := []types.Job{
		{Title: "orthogonal", GlobalVector: unitVector(384, 1), SkillVector: unitVector(384, 2)},
		{Title: "perfect", GlobalVector: unitVector(384, 0), SkillVector: unitVector(384, 0)},
		{Title: "skill-only", GlobalVector: unitVector(384, 3), SkillVector: unitVector(384, 0)},
	}

	summary := ScoreAll(user, jobs, DefaultWeights())

	require.Len(t, summary.Jobs, 3)
	assert.Equal(t, "perfect", summary.Jobs[0].Title)
	assert.Equal(t, 100.0, summary.Jobs[0].MatchScore)
	assert.Equal(t, "skill-only", summary.Jobs[1].Title)
	assert.Equal(t, 60.0, summary.Jobs[1].MatchScore)
	assert.Equal(t, "orthogonal", summary.Jobs[2].Title)

	assert.True(t, sort.SliceIsSorted(summary.Jobs, func(i, j int) bool {
		return summary.Jobs[i].MatchScore > summary.Jobs[j].MatchScore
	}))

	// 100 >= 70 的只有1个 → reach = 33.3
	assert.Equal(t, 33.3, summary.MarketReach)
	// 平均 (100+60+0)/3 = 53.3
	assert.Equal(t, 53.3, summary.AverageScore)
	assert.Equal(t, 3, summary.TotalJobs)
	// 60 和 100 达到高匹配阈值
	assert.Equal(t, 2, summary.HighMatchJobs)
}

func TestScoreAllEmpty(t *testing.T) {
	user := &types.UserVectors{
		GlobalVector: unitVector(384, 0),
		SkillVector:  unitVector(384, 0),
	}
	summary := ScoreAll(user, nil, DefaultWeights())

	assert.Equal(t, 0, summary.TotalJobs)
	assert.Equal(t, 0.0, summary.MarketReach)
	assert.Equal(t, 0.0, summary.AverageScore)
	assert.Equal(t, 0, summary.HighMatchJobs)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 33.3, Round1(100.0/3.0))
	assert.Equal(t, 66.7, Round1(200.0/3.0))
	assert.Equal(t, 0.0, Round1(0))
}
