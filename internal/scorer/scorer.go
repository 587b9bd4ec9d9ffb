package scorer

import (
	"math"
	"sort"

	"skillfit-go/internal/constants"
	"skillfit-go/internal/types"
)

// Weights 混合打分权重
// 默认0.6/0.4: 技能重合比泛主题相似更重要
type Weights struct {
	Skill  float64
	Global float64
}

// DefaultWeights 返回默认权重
func DefaultWeights() Weights {
	return Weights{
		Skill:  constants.DefaultSkillWeight,
		Global: constants.DefaultGlobalWeight,
	}
}

// Summary 批量打分的聚合统计
type Summary struct {
	Jobs          []types.Job
	MarketReach   float64 // match_score >= 70 的岗位百分比
	AverageScore  float64
	TotalJobs     int
	HighMatchJobs int // match_score >= 60 的岗位数
}

// CosineSimilarity 计算两个向量的余弦相似度
// 任一向量范数为0时返回0, 不会除零
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// MatchScore 计算单个岗位的混合匹配分数, 范围[0,100], 保留1位小数
func MatchScore(user *types.UserVectors, jobGlobal, jobSkill []float64, w Weights) float64 {
	skillSim := CosineSimilarity(user.SkillVector, jobSkill)
	globalSim := CosineSimilarity(user.GlobalVector, jobGlobal)

	raw := skillSim*w.Skill + globalSim*w.Global
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0.0
	}

	return round1(clamp(raw*100, 0, 100))
}

// ScoreAll 批量打分: 写入match_score, 按分数降序排序, 并计算市场统计
// 岗位数为0时所有统计为0
func ScoreAll(user *types.UserVectors, jobs []types.Job, w Weights) Summary {
	for i := range jobs {
		jobs[i].MatchScore = MatchScore(user, jobs[i].GlobalVector, jobs[i].SkillVector, w)
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].MatchScore > jobs[j].MatchScore
	})

	summary := Summary{Jobs: jobs, TotalJobs: len(jobs)}
	if len(jobs) == 0 {
		return summary
	}

	var total float64
	reachCount := 0
	for _, job := range jobs {
		total += job.MatchScore
		if job.MatchScore >= constants.MarketReachThreshold {
			reachCount++
		}
		if job.MatchScore >= constants.HighMatchThreshold {
			summary.HighMatchJobs++
		}
	}

	summary.MarketReach = round1(float64(reachCount) / float64(len(jobs)) * 100)
	summary.AverageScore = round1(total / float64(len(jobs)))
	return summary
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round1 四舍五入保留1位小数
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round1 对外暴露的1位小数四舍五入, 供统计口径统一使用
func Round1(v float64) float64 {
	return round1(v)
}
