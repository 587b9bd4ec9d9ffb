package simulation

import (
	"context"
	"testing"

	"skillfit-go/internal/scorer"
	"skillfit-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileStore struct {
	profile *types.Profile
	err     error
}

func (f *fakeProfileStore) GetProfile(ctx context.Context, profileID string) (*types.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakeSearchStore struct {
	jobs  []types.Job
	pairs []types.JobVectorPair
}

func (f *fakeSearchStore) GetJobsBySearch(ctx context.Context, searchID string) ([]types.Job, error) {
	return f.jobs, nil
}

func (f *fakeSearchStore) GetJobVectorsBySearch(ctx context.Context, searchID string) ([]types.JobVectorPair, error) {
	return f.pairs, nil
}

// fakeEmbedder 固定返回与岗位向量同向的单位向量, 重算分数恒为100
type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float64, error) {
	f.calls++
	vecs := make([][]float64, len(texts))
	for i := range texts {
		vecs[i] = []float64{1, 0, 0}
	}
	return vecs, nil
}

func testProfile() *types.Profile {
	return &types.Profile{
		ID:              "p1",
		RawText:         "resume text",
		ConfirmedSkills: []string{"Python", "SQL"},
	}
}

func testStore() *fakeSearchStore {
	return &fakeSearchStore{
		jobs: []types.Job{
			{ID: 1, Title: "ML Engineer", Company: "Acme", MatchScore: 50.0},
			{ID: 2, Title: "Data Engineer", Company: "Beta", MatchScore: 80.0},
		},
		pairs: []types.JobVectorPair{
			{JobID: 1, GlobalVector: []float64{1, 0, 0}, SkillVector: []float64{1, 0, 0}},
			{JobID: 2, GlobalVector: []float64{1, 0, 0}, SkillVector: []float64{1, 0, 0}},
		},
	}
}

func TestSimulateImprovesScores(t *testing.T) {
	embedder := &fakeEmbedder{}
	e := NewEngine(&fakeProfileStore{profile: testProfile()}, testStore(), embedder, scorer.DefaultWeights())

	report, err := e.Simulate(context.Background(), "s1", types.SimulationRequest{
		ProfileID:   "p1",
		AddedSkills: []string{"Kubernetes"},
	})
	require.NoError(t, err)

	// 重算后两个岗位都是100分
	assert.InDelta(t, 65.0, report.OriginalAvgScore, 0.01)
	assert.InDelta(t, 100.0, report.NewAvgScore, 0.01)
	assert.InDelta(t, 35.0, report.ScoreDelta, 0.01)
	assert.InDelta(t, 50.0, report.OriginalReach, 0.01)
	assert.InDelta(t, 100.0, report.NewReach, 0.01)
	assert.InDelta(t, 50.0, report.ReachDelta, 0.01)
	assert.Equal(t, 2, report.JobsImproved)

	// 提升幅度降序
	require.Len(t, report.TopImprovements, 2)
	assert.Equal(t, uint64(1), report.TopImprovements[0].ID)
	assert.InDelta(t, 50.0, report.TopImprovements[0].Delta, 0.01)
	assert.Equal(t, uint64(2), report.TopImprovements[1].ID)
}

func TestSimulateAlreadyConfirmedSkillShortCircuits(t *testing.T) {
	embedder := &fakeEmbedder{}
	e := NewEngine(&fakeProfileStore{profile: testProfile()}, testStore(), embedder, scorer.DefaultWeights())

	report, err := e.Simulate(context.Background(), "s1", types.SimulationRequest{
		ProfileID:   "p1",
		AddedSkills: []string{"python", "  SQL  "},
	})
	require.NoError(t, err)

	// 无新技能: 零增量, 且不触发任何嵌入调用
	assert.Equal(t, 0, embedder.calls)
	assert.Zero(t, report.ScoreDelta)
	assert.Zero(t, report.ReachDelta)
	assert.Equal(t, 0, report.JobsImproved)
	assert.Equal(t, report.OriginalAvgScore, report.NewAvgScore)
	assert.Empty(t, report.TopImprovements)
}

func TestSimulateSkipsJobsWithoutCachedVectors(t *testing.T) {
	store := testStore()
	store.pairs = store.pairs[:1] // 只有岗位1有向量缓存

	e := NewEngine(&fakeProfileStore{profile: testProfile()}, store, &fakeEmbedder{}, scorer.DefaultWeights())

	report, err := e.Simulate(context.Background(), "s1", types.SimulationRequest{
		ProfileID:   "p1",
		AddedSkills: []string{"Go"},
	})
	require.NoError(t, err)

	// 只比较有缓存的岗位
	assert.InDelta(t, 50.0, report.OriginalAvgScore, 0.01)
	assert.InDelta(t, 100.0, report.NewAvgScore, 0.01)
	assert.Equal(t, 1, report.JobsImproved)
}

func TestSimulateNoJobs(t *testing.T) {
	e := NewEngine(&fakeProfileStore{profile: testProfile()}, &fakeSearchStore{}, &fakeEmbedder{}, scorer.DefaultWeights())

	_, err := e.Simulate(context.Background(), "s1", types.SimulationRequest{
		ProfileID:   "p1",
		AddedSkills: []string{"Go"},
	})
	assert.ErrorIs(t, err, ErrNoJobs)
}

func TestSimulateNoCachedVectors(t *testing.T) {
	store := testStore()
	store.pairs = nil

	e := NewEngine(&fakeProfileStore{profile: testProfile()}, store, &fakeEmbedder{}, scorer.DefaultWeights())

	_, err := e.Simulate(context.Background(), "s1", types.SimulationRequest{
		ProfileID:   "p1",
		AddedSkills: []string{"Go"},
	})
	assert.ErrorIs(t, err, ErrNoCachedVectors)
}

func TestSimulateProfileNotFoundPropagates(t *testing.T) {
	e := NewEngine(&fakeProfileStore{err: assert.AnError}, testStore(), &fakeEmbedder{}, scorer.DefaultWeights())

	_, err := e.Simulate(context.Background(), "s1", types.SimulationRequest{ProfileID: "missing"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSimulateTopImprovementsCappedAtTen(t *testing.T) {
	store := &fakeSearchStore{}
	for i := uint64(1); i <= 15; i++ {
		store.jobs = append(store.jobs, types.Job{ID: i, MatchScore: 10.0})
		store.pairs = append(store.pairs, types.JobVectorPair{
			JobID:        i,
			GlobalVector: []float64{1, 0, 0},
			SkillVector:  []float64{1, 0, 0},
		})
	}

	e := NewEngine(&fakeProfileStore{profile: testProfile()}, store, &fakeEmbedder{}, scorer.DefaultWeights())

	report, err := e.Simulate(context.Background(), "s1", types.SimulationRequest{
		ProfileID:   "p1",
		AddedSkills: []string{"Go"},
	})
	require.NoError(t, err)
	assert.Equal(t, 15, report.JobsImproved)
	assert.Len(t, report.TopImprovements, 10)
}
