package scraper

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"skillfit-go/internal/config"
	"skillfit-go/internal/constants"
	"skillfit-go/internal/scorer"
	"skillfit-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder 返回全1向量, 余弦相似度恒为1
type stubEmbedder struct {
	calls int
	fail  bool
}

func (s *stubEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float64, error) {
	s.calls++
	if s.fail {
		return nil, assert.AnError
	}
	vecs := make([][]float64, len(texts))
	for i := range texts {
		vecs[i] = []float64{1, 1, 1, 1}
	}
	return vecs, nil
}

const linkedinStub = `#!/bin/sh
echo "开始抓取: $1 @ $2 limit=$3"
cat > "$4" <<'JSON'
[
  {"title": "Go Developer", "company": "Acme", "location": "Pune", "description": "go microservices", "skills": ["go"], "url": "https://jobs.example/1"},
  {"title": "Data Engineer", "company": "Beta", "location": "Mumbai", "description": "python spark", "skills": ["python"], "link": "https://jobs.example/2"}
]
JSON
echo "抓取完成"
`

const failingStub = `#!/bin/sh
echo "portal exploded" >&2
exit 1
`

const emptyStub = `#!/bin/sh
echo "[]" > "$4"
`

func newTestEngine(t *testing.T, embedder *stubEmbedder) *Engine {
	t.Helper()
	scriptDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(scriptDir, "linkedin.py"), []byte(linkedinStub), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scriptDir, "Indeed.py"), []byte(failingStub), 0o755))

	cfg := &config.ScraperConfig{
		ScriptDir:      scriptDir,
		ResultsDir:     "results",
		Interpreter:    "sh",
		DefaultLimit:   5,
		TimeoutMinutes: 1,
	}
	return NewEngine(cfg, NewTaskRegistry(), nil, embedder, scorer.DefaultWeights(), nil)
}

func waitForCompletion(t *testing.T, e *Engine, taskID string) TaskSnapshot {
	t.Helper()
	var snap TaskSnapshot
	require.Eventually(t, func() bool {
		s, err := e.Registry().Snapshot(taskID)
		if err != nil {
			return false
		}
		snap = s
		return s.Status == constants.TaskStatusCompleted || s.Status == constants.TaskStatusFailed
	}, 10*time.Second, 20*time.Millisecond)
	return snap
}

func readArtifact(t *testing.T, e *Engine, taskID string) types.SearchArtifact {
	t.Helper()
	data, err := os.ReadFile(e.ArtifactPath(taskID))
	require.NoError(t, err)
	var artifact types.SearchArtifact
	require.NoError(t, json.Unmarshal(data, &artifact))
	return artifact
}

func TestEngineUnscoredSearch(t *testing.T) {
	e := newTestEngine(t, &stubEmbedder{})

	taskID := e.StartSearch(types.SearchRequest{
		Query:    "golang",
		Location: "Pune",
		Portals:  []string{"linkedin"},
	}, nil)
	require.NotEmpty(t, taskID)

	snap := waitForCompletion(t, e, taskID)
	assert.Equal(t, constants.TaskStatusCompleted, snap.Status)

	artifact := readArtifact(t, e, taskID)
	assert.Equal(t, taskID, artifact.TaskID)
	assert.Equal(t, "golang", artifact.Query)
	require.Len(t, artifact.Jobs, 2)
	assert.Equal(t, "linkedin", artifact.Jobs[0].Portal)
	// link字段兜底为url
	assert.Equal(t, "https://jobs.example/2", artifact.Jobs[1].URL)
	// 未提供用户向量时统计字段缺席
	assert.Nil(t, artifact.MarketReach)
	assert.Nil(t, artifact.TotalJobs)
}

func TestEngineScoredSearch(t *testing.T) {
	embedder := &stubEmbedder{}
	e := newTestEngine(t, embedder)

	uv := &types.UserVectors{
		GlobalVector: []float64{1, 1, 1, 1},
		SkillVector:  []float64{1, 1, 1, 1},
	}
	taskID := e.StartSearch(types.SearchRequest{
		Query:    "golang",
		Location: "Pune",
		Portals:  []string{"linkedin"},
	}, uv)

	snap := waitForCompletion(t, e, taskID)
	assert.Equal(t, constants.TaskStatusCompleted, snap.Status)
	// 描述和技能串各一次批量调用
	assert.Equal(t, 2, embedder.calls)

	artifact := readArtifact(t, e, taskID)
	require.NotNil(t, artifact.MarketReach)
	require.NotNil(t, artifact.TotalJobs)
	assert.Equal(t, 2, *artifact.TotalJobs)
	assert.InDelta(t, 100.0, *artifact.MarketReach, 0.01)
	assert.Equal(t, 2, *artifact.HighMatchJobs)
	for _, job := range artifact.Jobs {
		assert.InDelta(t, 100.0, job.MatchScore, 0.01)
		// 工件中不携带原始向量
		assert.Nil(t, job.GlobalVector)
		assert.Nil(t, job.SkillVector)
	}
}

func TestEngineScoredSearchWithoutJobsEmitsZeroStats(t *testing.T) {
	embedder := &stubEmbedder{}
	e := newTestEngine(t, embedder)
	require.NoError(t, os.WriteFile(filepath.Join(e.cfg.ScriptDir, "Glassdoor.py"), []byte(emptyStub), 0o755))

	uv := &types.UserVectors{
		GlobalVector: []float64{1, 1, 1, 1},
		SkillVector:  []float64{1, 1, 1, 1},
	}
	taskID := e.StartSearch(types.SearchRequest{
		Query:    "golang",
		Location: "Pune",
		Portals:  []string{"glassdoor"},
	}, uv)

	snap := waitForCompletion(t, e, taskID)
	assert.Equal(t, constants.TaskStatusCompleted, snap.Status)
	// 没有岗位就没有嵌入调用
	assert.Equal(t, 0, embedder.calls)

	// 提供了用户向量, 即使零岗位统计字段也应输出且为零值
	artifact := readArtifact(t, e, taskID)
	assert.Empty(t, artifact.Jobs)
	require.NotNil(t, artifact.TotalJobs)
	require.NotNil(t, artifact.MarketReach)
	require.NotNil(t, artifact.AverageScore)
	require.NotNil(t, artifact.HighMatchJobs)
	assert.Equal(t, 0, *artifact.TotalJobs)
	assert.Equal(t, 0.0, *artifact.MarketReach)
	assert.Equal(t, 0.0, *artifact.AverageScore)
	assert.Equal(t, 0, *artifact.HighMatchJobs)
}

func TestEngineRemovesPortalTempFiles(t *testing.T) {
	e := newTestEngine(t, &stubEmbedder{})

	taskID := e.StartSearch(types.SearchRequest{
		Query:    "golang",
		Location: "Pune",
		Portals:  []string{"linkedin"},
	}, nil)

	snap := waitForCompletion(t, e, taskID)
	assert.Equal(t, constants.TaskStatusCompleted, snap.Status)

	// 门户中间文件聚合后删除, 最终工件保留
	_, err := os.Stat(filepath.Join(e.resultsDir(), taskID+"_linkedin_jobs.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(e.ArtifactPath(taskID))
	assert.NoError(t, err)
}

func TestEnginePortalFailureIsNonFatal(t *testing.T) {
	e := newTestEngine(t, &stubEmbedder{})

	taskID := e.StartSearch(types.SearchRequest{
		Query:    "golang",
		Location: "Pune",
		Portals:  []string{"linkedin", "indeed"},
	}, nil)

	snap := waitForCompletion(t, e, taskID)
	assert.Equal(t, constants.TaskStatusCompleted, snap.Status)

	artifact := readArtifact(t, e, taskID)
	assert.Len(t, artifact.Jobs, 2)

	// 失败门户的stderr和失败原因进入任务日志
	logs := joinLogs(snap.Logs)
	assert.Contains(t, logs, "portal exploded")
	assert.Contains(t, logs, "[indeed] 抓取失败")
}

func TestEngineUnknownPortalWarning(t *testing.T) {
	e := newTestEngine(t, &stubEmbedder{})

	taskID := e.StartSearch(types.SearchRequest{
		Query:    "golang",
		Location: "Pune",
		Portals:  []string{"linkedin", "monster"},
	}, nil)

	snap := waitForCompletion(t, e, taskID)
	assert.Equal(t, constants.TaskStatusCompleted, snap.Status)
	assert.Contains(t, joinLogs(snap.Logs), "monster")
}

func TestEngineAllPortalsUnknownFails(t *testing.T) {
	e := newTestEngine(t, &stubEmbedder{})

	taskID := e.StartSearch(types.SearchRequest{
		Query:    "golang",
		Location: "Pune",
		Portals:  []string{"monster"},
	}, nil)

	snap := waitForCompletion(t, e, taskID)
	assert.Equal(t, constants.TaskStatusFailed, snap.Status)
}

func TestEngineEmbeddingFailureLeavesArtifactUnscored(t *testing.T) {
	e := newTestEngine(t, &stubEmbedder{fail: true})

	uv := &types.UserVectors{
		GlobalVector: []float64{1, 0},
		SkillVector:  []float64{1, 0},
	}
	taskID := e.StartSearch(types.SearchRequest{
		Query:    "golang",
		Location: "Pune",
		Portals:  []string{"linkedin"},
	}, uv)

	snap := waitForCompletion(t, e, taskID)
	assert.Equal(t, constants.TaskStatusCompleted, snap.Status)

	artifact := readArtifact(t, e, taskID)
	assert.Len(t, artifact.Jobs, 2)
	assert.Nil(t, artifact.MarketReach)
}

func TestParsePortalOutput(t *testing.T) {
	data := []byte(`[{"title":"A","company":"C","link":"https://x"}]`)
	jobs, err := parsePortalOutput(data, "naukri")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "naukri", jobs[0].Portal)
	assert.Equal(t, "https://x", jobs[0].URL)

	_, err = parsePortalOutput([]byte("not json"), "naukri")
	assert.Error(t, err)
}

func joinLogs(logs []string) string {
	out := ""
	for _, l := range logs {
		out += l + "\n"
	}
	return out
}
