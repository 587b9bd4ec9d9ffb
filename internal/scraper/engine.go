package scraper

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"skillfit-go/internal/config"
	"skillfit-go/internal/constants"
	"skillfit-go/internal/embedding"
	"skillfit-go/internal/logger"
	"skillfit-go/internal/scorer"
	"skillfit-go/internal/skills"
	"skillfit-go/internal/storage"
	"skillfit-go/internal/types"

	"github.com/google/uuid"
)

// Engine 抓取编排引擎
// 每次搜索在独立goroutine中执行: 并发启动门户脚本子进程, 聚合输出,
// 补全技能, 计算匹配分, 落盘工件并尽力持久化
type Engine struct {
	cfg      *config.ScraperConfig
	registry *TaskRegistry
	enricher skills.Enricher
	embedder embedding.Embedder
	weights  scorer.Weights
	store    *storage.Storage
}

// NewEngine 创建抓取编排引擎
// store可为nil, 此时跳过数据库/缓存/对象存储持久化, 只产出文件工件
func NewEngine(cfg *config.ScraperConfig, registry *TaskRegistry, enricher skills.Enricher, embedder embedding.Embedder, weights scorer.Weights, store *storage.Storage) *Engine {
	if enricher == nil {
		enricher = skills.NewNoopEnricher(skills.NewStandardizer(""))
	}
	return &Engine{
		cfg:      cfg,
		registry: registry,
		enricher: enricher,
		embedder: embedder,
		weights:  weights,
		store:    store,
	}
}

// Registry 返回任务注册表
func (e *Engine) Registry() *TaskRegistry {
	return e.registry
}

// resultsDir 返回结果目录的绝对路径
func (e *Engine) resultsDir() string {
	if filepath.IsAbs(e.cfg.ResultsDir) {
		return e.cfg.ResultsDir
	}
	return filepath.Join(e.cfg.ScriptDir, e.cfg.ResultsDir)
}

// ArtifactPath 返回任务最终工件的文件路径
func (e *Engine) ArtifactPath(taskID string) string {
	return filepath.Join(e.resultsDir(), taskID+"_final_results.json")
}

// StartSearch 登记任务并异步执行, 立即返回task_id
func (e *Engine) StartSearch(req types.SearchRequest, uv *types.UserVectors) string {
	taskID := uuid.New().String()
	e.registry.Register(taskID)

	go e.run(taskID, req, uv)

	return taskID
}

// run 执行一次完整的搜索任务, 整体受配置超时约束
func (e *Engine) run(taskID string, req types.SearchRequest, uv *types.UserVectors) {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Timeout())
	defer cancel()

	e.registry.SetStatus(taskID, constants.TaskStatusProcessing)
	e.registry.AppendLog(taskID, fmt.Sprintf("任务启动: query=%q location=%q portals=%v", req.Query, req.Location, req.Portals))

	portals, warnings, err := ResolvePortals(req.Portals)
	for _, w := range warnings {
		e.registry.AppendLog(taskID, w)
	}
	if err != nil {
		e.registry.AppendLog(taskID, "任务失败: "+err.Error())
		e.registry.SetStatus(taskID, constants.TaskStatusFailed)
		return
	}

	if err := os.MkdirAll(e.resultsDir(), 0o755); err != nil {
		e.registry.AppendLog(taskID, "任务失败: 创建结果目录失败: "+err.Error())
		e.registry.SetStatus(taskID, constants.TaskStatusFailed)
		return
	}

	// 先登记搜索记录, 统计项任务结束后回填
	if e.store != nil && e.store.MySQL != nil {
		portalNames := make([]string, 0, len(portals))
		for _, d := range portals {
			portalNames = append(portalNames, d.Name)
		}
		if err := e.store.MySQL.SaveSearch(ctx, taskID, req.ProfileID, req.Query, req.Location, portalNames); err != nil {
			e.registry.AppendLog(taskID, "警告: 登记搜索记录失败: "+err.Error())
		}
	}

	// 并发执行各门户脚本, 单门户失败不影响其他门户
	perPortal := make([][]types.Job, len(portals))
	var wg sync.WaitGroup
	for i, d := range portals {
		wg.Add(1)
		go func(idx int, d PortalDescriptor) {
			defer wg.Done()
			jobs, err := e.runPortal(ctx, taskID, d, req)
			if err != nil {
				e.registry.AppendLog(taskID, fmt.Sprintf("[%s] 抓取失败: %v", d.Name, err))
				return
			}
			e.registry.AppendLog(taskID, fmt.Sprintf("[%s] 抓取完成, 获得 %d 条岗位", d.Name, len(jobs)))
			perPortal[idx] = jobs
		}(i, d)
	}
	wg.Wait()

	// 按门户表声明顺序聚合
	var jobs []types.Job
	for _, portalJobs := range perPortal {
		jobs = append(jobs, portalJobs...)
	}
	e.registry.AppendLog(taskID, fmt.Sprintf("聚合完成, 共 %d 条岗位", len(jobs)))

	// 技能补全, 单岗位失败不致命
	jobs = e.enricher.Enrich(ctx, jobs)

	artifact := &types.SearchArtifact{
		TaskID:   taskID,
		Query:    req.Query,
		Location: req.Location,
		Jobs:     jobs,
	}

	// 仅在提供用户向量时计算匹配分和市场统计; 零岗位时统计为零值但仍输出
	if uv.Valid() && e.embedder != nil {
		if len(jobs) == 0 {
			empty := scorer.ScoreAll(uv, nil, e.weights)
			artifact.MarketReach = &empty.MarketReach
			artifact.AverageScore = &empty.AverageScore
			artifact.TotalJobs = &empty.TotalJobs
			artifact.HighMatchJobs = &empty.HighMatchJobs
		} else if scored, ok := e.embedAndScore(ctx, taskID, jobs, uv); ok {
			artifact.Jobs = scored.Jobs
			artifact.MarketReach = &scored.MarketReach
			artifact.AverageScore = &scored.AverageScore
			artifact.TotalJobs = &scored.TotalJobs
			artifact.HighMatchJobs = &scored.HighMatchJobs
		}
	}

	e.persist(ctx, taskID, artifact)
	e.registry.SetStatus(taskID, constants.TaskStatusCompleted)
	e.registry.AppendLog(taskID, "任务完成")
}

// runPortal 启动单个门户脚本子进程并解析其输出文件
func (e *Engine) runPortal(ctx context.Context, taskID string, d PortalDescriptor, req types.SearchRequest) ([]types.Job, error) {
	scriptPath := filepath.Join(e.cfg.ScriptDir, d.Script)
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, fmt.Errorf("脚本不存在: %s", d.Script)
	}

	limit := e.cfg.DefaultLimit
	serpKey := e.cfg.SerpAPIKey
	if d.RequiresSerpAPI && req.SerpAPIConfig != nil {
		if req.SerpAPIConfig.NumJobs > 0 {
			limit = req.SerpAPIConfig.NumJobs
		}
		if req.SerpAPIConfig.APIKey != "" {
			serpKey = req.SerpAPIConfig.APIKey
		}
	}

	// 输出路径相对于脚本工作目录, 带task_id前缀避免并发任务互相覆盖
	outputRel := filepath.Join(e.cfg.ResultsDir, taskID+"_"+d.OutputFile)

	cmd := exec.CommandContext(ctx, e.cfg.Interpreter, d.Script, req.Query, req.Location, strconv.Itoa(limit), outputRel)
	cmd.Dir = e.cfg.ScriptDir
	cmd.Env = append(os.Environ(), serpEnv(d, serpKey)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("创建stdout管道失败: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("创建stderr管道失败: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("启动脚本失败: %w", err)
	}
	e.registry.AppendLog(taskID, fmt.Sprintf("[%s] 脚本已启动 (limit=%d)", d.Name, limit))

	// 子进程输出实时写入任务日志
	var streamWG sync.WaitGroup
	streamWG.Add(2)
	go e.streamOutput(taskID, d.Name, stdout, &streamWG)
	go e.streamOutput(taskID, d.Name, stderr, &streamWG)
	streamWG.Wait()

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("脚本退出异常: %w", err)
	}

	outputPath := outputRel
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(e.cfg.ScriptDir, outputRel)
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("读取输出文件失败: %w", err)
	}
	// 门户中间文件聚合后即可删除, 最终工件才是结果来源
	if err := os.Remove(outputPath); err != nil {
		e.registry.AppendLog(taskID, fmt.Sprintf("[%s] 删除中间文件失败: %v", d.Name, err))
	}
	return parsePortalOutput(data, d.Name)
}

// streamOutput 按行读取子进程输出写入任务日志
func (e *Engine) streamOutput(taskID, portal string, r io.Reader, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		e.registry.AppendLog(taskID, fmt.Sprintf("[%s] %s", portal, line))
	}
}

// rawJob 门户脚本输出的一条岗位, 链接字段兼容url和link两种写法
type rawJob struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	URL         string   `json:"url"`
	Link        string   `json:"link"`
}

// parsePortalOutput 解析门户输出JSON并打上门户标记
func parsePortalOutput(data []byte, portal string) ([]types.Job, error) {
	var raw []rawJob
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析输出JSON失败: %w", err)
	}

	jobs := make([]types.Job, 0, len(raw))
	for _, r := range raw {
		url := r.URL
		if url == "" {
			url = r.Link
		}
		jobs = append(jobs, types.Job{
			Title:       r.Title,
			Company:     r.Company,
			Location:    r.Location,
			Description: r.Description,
			Skills:      r.Skills,
			URL:         url,
			Portal:      portal,
		})
	}
	return jobs, nil
}

// embedAndScore 获取岗位向量并计算匹配分
// 嵌入服务不可用时记录日志并放弃打分, 工件保持未打分状态
func (e *Engine) embedAndScore(ctx context.Context, taskID string, jobs []types.Job, uv *types.UserVectors) (*scorer.Summary, bool) {
	descTexts := make([]string, len(jobs))
	skillTexts := make([]string, len(jobs))
	for i := range jobs {
		descTexts[i] = embedding.CleanText(jobs[i].Description)
		if descTexts[i] == "" {
			descTexts[i] = strings.ToLower(jobs[i].Title)
		}
		skillTexts[i] = strings.ToLower(strings.Join(jobs[i].Skills, ", "))
		if skillTexts[i] == "" {
			skillTexts[i] = descTexts[i]
		}
	}

	globalVecs, err := e.embedder.EmbedStrings(ctx, descTexts)
	if err != nil {
		e.registry.AppendLog(taskID, "警告: 岗位描述向量化失败, 工件不含匹配分: "+err.Error())
		return nil, false
	}
	skillVecs, err := e.embedder.EmbedStrings(ctx, skillTexts)
	if err != nil {
		e.registry.AppendLog(taskID, "警告: 岗位技能向量化失败, 工件不含匹配分: "+err.Error())
		return nil, false
	}
	if len(globalVecs) != len(jobs) || len(skillVecs) != len(jobs) {
		e.registry.AppendLog(taskID, "警告: 向量数量与岗位数量不一致, 工件不含匹配分")
		return nil, false
	}
	for i := range jobs {
		jobs[i].GlobalVector = globalVecs[i]
		jobs[i].SkillVector = skillVecs[i]
	}

	summary := scorer.ScoreAll(uv, jobs, e.weights)
	e.registry.AppendLog(taskID, fmt.Sprintf("打分完成: market_reach=%.1f%% avg=%.1f high_match=%d",
		summary.MarketReach, summary.AverageScore, summary.HighMatchJobs))
	return &summary, true
}

// persist 落盘工件并尽力持久化到MySQL/Redis/MinIO
// 文件工件是事实之源, 其余持久化失败只记日志
func (e *Engine) persist(ctx context.Context, taskID string, artifact *types.SearchArtifact) {
	// 工件中不携带原始向量, 持久化数据库行时用保留向量的副本
	jobsWithVectors := make([]types.Job, len(artifact.Jobs))
	copy(jobsWithVectors, artifact.Jobs)
	for i := range artifact.Jobs {
		artifact.Jobs[i].DropVectors()
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		e.registry.AppendLog(taskID, "警告: 序列化工件失败: "+err.Error())
		return
	}
	if err := os.WriteFile(e.ArtifactPath(taskID), data, 0o644); err != nil {
		e.registry.AppendLog(taskID, "警告: 写入工件文件失败: "+err.Error())
	}

	if e.store == nil {
		return
	}

	if e.store.MySQL != nil {
		if err := e.store.MySQL.SaveJobsBatch(ctx, taskID, jobsWithVectors); err != nil {
			e.registry.AppendLog(taskID, "警告: 持久化岗位失败: "+err.Error())
			logger.Warn().Err(err).Str("task_id", taskID).Msg("持久化岗位失败")
		}
		if artifact.TotalJobs != nil {
			err := e.store.MySQL.UpdateSearchScores(ctx, taskID,
				*artifact.TotalJobs, *artifact.MarketReach, *artifact.AverageScore, *artifact.HighMatchJobs)
			if err != nil {
				e.registry.AppendLog(taskID, "警告: 回填搜索统计失败: "+err.Error())
			}
		}
	}

	if e.store.Redis != nil {
		if err := e.store.Redis.CacheSearchArtifact(ctx, taskID, artifact); err != nil {
			e.registry.AppendLog(taskID, "警告: 缓存工件失败: "+err.Error())
		}
	}

	if e.store.MinIO != nil {
		objectName := taskID + "_final_results.json"
		if err := e.store.MinIO.UploadArtifact(ctx, objectName, data); err != nil {
			e.registry.AppendLog(taskID, "警告: 归档工件失败: "+err.Error())
		}
	}
}
