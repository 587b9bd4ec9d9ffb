// Package simulation 实现what-if技能模拟:
// 基于缓存的岗位向量, 对历史搜索重新打分, 不触发任何抓取
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"skillfit-go/internal/constants"
	"skillfit-go/internal/embedding"
	"skillfit-go/internal/scorer"
	"skillfit-go/internal/types"
)

var (
	// ErrNoJobs 搜索没有岗位, 无法模拟
	ErrNoJobs = errors.New("search has no jobs")
	// ErrNoCachedVectors 搜索没有缓存的岗位向量, 无法模拟
	ErrNoCachedVectors = errors.New("search has no cached job vectors")
)

// ProfileStore 画像读取接口
type ProfileStore interface {
	GetProfile(ctx context.Context, profileID string) (*types.Profile, error)
}

// SearchStore 搜索结果与向量缓存读取接口
type SearchStore interface {
	GetJobsBySearch(ctx context.Context, searchID string) ([]types.Job, error)
	GetJobVectorsBySearch(ctx context.Context, searchID string) ([]types.JobVectorPair, error)
}

// Engine what-if模拟引擎
type Engine struct {
	profiles ProfileStore
	searches SearchStore
	embedder embedding.Embedder
	weights  scorer.Weights
}

// NewEngine 创建模拟引擎
func NewEngine(profiles ProfileStore, searches SearchStore, embedder embedding.Embedder, weights scorer.Weights) *Engine {
	return &Engine{
		profiles: profiles,
		searches: searches,
		embedder: embedder,
		weights:  weights,
	}
}

// Simulate 模拟向画像追加技能后, 历史搜索各岗位分数的变化
// 增广向量仅在本次调用内存在, 不会持久化
func (e *Engine) Simulate(ctx context.Context, searchID string, req types.SimulationRequest) (*types.SimulationReport, error) {
	profile, err := e.profiles.GetProfile(ctx, req.ProfileID)
	if err != nil {
		return nil, err
	}

	jobs, err := e.searches.GetJobsBySearch(ctx, searchID)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}

	newSkills := dedupAgainstConfirmed(req.AddedSkills, profile.ConfirmedSkills)

	// 所有候选技能都已具备时直接返回零增量, 不做任何重算
	if len(newSkills) == 0 {
		avg, reach := scoreStats(matchScores(jobs))
		return &types.SimulationReport{
			OriginalAvgScore: avg,
			NewAvgScore:      avg,
			OriginalReach:    reach,
			NewReach:         reach,
			TopImprovements:  []types.ImprovedJob{},
		}, nil
	}

	pairs, err := e.searches.GetJobVectorsBySearch(ctx, searchID)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, ErrNoCachedVectors
	}

	augmentedText := profile.RawText + "\n\n" + strings.Join(newSkills, ", ")
	augmentedSkills := append(append([]string{}, profile.ConfirmedSkills...), newSkills...)
	uv, err := embedding.GenerateUserVectors(ctx, e.embedder, augmentedText, augmentedSkills)
	if err != nil {
		return nil, fmt.Errorf("生成增广向量失败: %w", err)
	}

	jobByID := make(map[uint64]types.Job, len(jobs))
	for _, job := range jobs {
		jobByID[job.ID] = job
	}

	// 只重算有向量缓存的岗位, 缺失的静默跳过
	var oldScores, newScores []float64
	var improvements []types.ImprovedJob
	for _, pair := range pairs {
		job, ok := jobByID[pair.JobID]
		if !ok {
			continue
		}
		newScore := scorer.MatchScore(uv, pair.GlobalVector, pair.SkillVector, e.weights)
		oldScores = append(oldScores, job.MatchScore)
		newScores = append(newScores, newScore)

		delta := scorer.Round1(newScore - job.MatchScore)
		if delta > 0 {
			improvements = append(improvements, types.ImprovedJob{
				ID:       job.ID,
				Title:    job.Title,
				Company:  job.Company,
				OldScore: job.MatchScore,
				NewScore: newScore,
				Delta:    delta,
			})
		}
	}
	if len(newScores) == 0 {
		return nil, ErrNoCachedVectors
	}

	sort.SliceStable(improvements, func(i, j int) bool {
		return improvements[i].Delta > improvements[j].Delta
	})
	jobsImproved := len(improvements)
	if len(improvements) > 10 {
		improvements = improvements[:10]
	}

	oldAvg, oldReach := scoreStats(oldScores)
	newAvg, newReach := scoreStats(newScores)

	return &types.SimulationReport{
		OriginalAvgScore: oldAvg,
		NewAvgScore:      newAvg,
		ScoreDelta:       scorer.Round1(newAvg - oldAvg),
		OriginalReach:    oldReach,
		NewReach:         newReach,
		ReachDelta:       scorer.Round1(newReach - oldReach),
		JobsImproved:     jobsImproved,
		TopImprovements:  improvements,
	}, nil
}

// dedupAgainstConfirmed 过滤掉已确认的技能(不区分大小写), 同时去除重复和空白项
func dedupAgainstConfirmed(added, confirmed []string) []string {
	existing := make(map[string]bool, len(confirmed))
	for _, s := range confirmed {
		existing[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var out []string
	for _, s := range added {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || existing[key] {
			continue
		}
		existing[key] = true
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func matchScores(jobs []types.Job) []float64 {
	scores := make([]float64, len(jobs))
	for i := range jobs {
		scores[i] = jobs[i].MatchScore
	}
	return scores
}

// scoreStats 计算平均分和60分以上占比(%), 均保留1位小数
func scoreStats(scores []float64) (avg, reach float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	var sum float64
	var high int
	for _, s := range scores {
		sum += s
		if s >= constants.HighMatchThreshold {
			high++
		}
	}
	avg = scorer.Round1(sum / float64(len(scores)))
	reach = scorer.Round1(100 * float64(high) / float64(len(scores)))
	return avg, reach
}
