package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"skillfit-go/internal/analytics"
	"skillfit-go/internal/constants"
	"skillfit-go/internal/logger"
	"skillfit-go/internal/scraper"
	"skillfit-go/internal/storage"
	"skillfit-go/internal/types"
)

// ErrTaskInProgress 任务尚未完成, 结果不可用
var ErrTaskInProgress = errors.New("task is still in progress")

// ErrResultNotFound 任务结果不存在
var ErrResultNotFound = errors.New("task result not found")

// JobHandler 搜索任务处理器, 负责任务的发起、状态查询、结果与分析读取
type JobHandler struct {
	engine     *scraper.Engine
	store      *storage.Storage
	aggregator *analytics.Aggregator
}

// NewJobHandler 创建搜索任务处理器
func NewJobHandler(engine *scraper.Engine, store *storage.Storage, aggregator *analytics.Aggregator) *JobHandler {
	return &JobHandler{
		engine:     engine,
		store:      store,
		aggregator: aggregator,
	}
}

// StartSearch 校验请求、解析用户向量并发起异步搜索任务
func (h *JobHandler) StartSearch(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("%w: query不能为空", ErrInvalidRequest)
	}
	if len(req.Portals) == 0 {
		return nil, fmt.Errorf("%w: portals不能为空", ErrInvalidRequest)
	}

	uv := req.UserVectors
	if !uv.Valid() && req.ProfileID != "" {
		profile, err := h.getProfile(ctx, req.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("读取画像向量失败: %w", err)
		}
		uv = &types.UserVectors{
			GlobalVector: profile.GlobalVector,
			SkillVector:  profile.SkillVector,
		}
	}

	taskID := h.engine.StartSearch(*req, uv)
	logger.Info().
		Str("task_id", taskID).
		Str("query", req.Query).
		Strs("portals", req.Portals).
		Bool("scored", uv.Valid()).
		Msg("搜索任务已发起")

	return &types.SearchResponse{
		TaskID: taskID,
		Status: constants.TaskStatusPending,
	}, nil
}

func (h *JobHandler) getProfile(ctx context.Context, profileID string) (*types.Profile, error) {
	if h.store == nil || h.store.MySQL == nil {
		return nil, storage.ErrProfileNotFound
	}
	return h.store.MySQL.GetProfile(ctx, profileID)
}

// GetStatus 查询任务状态与日志
// 进程重启后注册表是空的, 此时工件文件存在即视为已完成的历史任务
func (h *JobHandler) GetStatus(ctx context.Context, taskID string) (*types.TaskStatusResponse, error) {
	snap, err := h.engine.Registry().Snapshot(taskID)
	if err == nil {
		return &types.TaskStatusResponse{
			TaskID: snap.TaskID,
			Status: snap.Status,
			Logs:   snap.Logs,
		}, nil
	}

	if _, statErr := os.Stat(h.engine.ArtifactPath(taskID)); statErr == nil {
		return &types.TaskStatusResponse{
			TaskID: taskID,
			Status: constants.TaskStatusCompleted,
			Logs:   []string{},
		}, nil
	}
	return nil, scraper.ErrTaskNotFound
}

// GetResults 读取任务的最终工件
// 优先Redis缓存, 其次工件文件; 任务仍在执行时返回ErrTaskInProgress
func (h *JobHandler) GetResults(ctx context.Context, taskID string) (*types.SearchArtifact, error) {
	if snap, err := h.engine.Registry().Snapshot(taskID); err == nil {
		if snap.Status == constants.TaskStatusPending || snap.Status == constants.TaskStatusProcessing {
			return nil, ErrTaskInProgress
		}
	}

	if h.store != nil && h.store.Redis != nil {
		artifact, err := h.store.Redis.GetSearchArtifact(ctx, taskID)
		if err == nil {
			return artifact, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn().Err(err).Str("task_id", taskID).Msg("读取工件缓存失败, 回退到文件")
		}
	}

	data, err := os.ReadFile(h.engine.ArtifactPath(taskID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	var artifact types.SearchArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("解析工件文件失败: %w", err)
	}
	return &artifact, nil
}

// GetAnalytics 基于任务工件计算市场分析
// 计算结果缓存于Redis; 工件不可用时回退到数据库中的岗位行
func (h *JobHandler) GetAnalytics(ctx context.Context, taskID string) (*analytics.Result, error) {
	if h.store != nil && h.store.Redis != nil {
		if data, err := h.store.Redis.GetAnalytics(ctx, taskID); err == nil {
			var cached analytics.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	artifact, err := h.GetResults(ctx, taskID)
	if err == nil {
		result := h.aggregator.Compute(artifact.Jobs)
		h.cacheAnalytics(ctx, taskID, &result)
		return &result, nil
	}
	if errors.Is(err, ErrTaskInProgress) {
		return nil, err
	}

	if h.store != nil && h.store.MySQL != nil {
		jobs, dbErr := h.store.MySQL.GetJobsBySearch(ctx, taskID)
		if dbErr == nil && len(jobs) > 0 {
			result := h.aggregator.Compute(jobs)
			h.cacheAnalytics(ctx, taskID, &result)
			return &result, nil
		}
	}
	return nil, err
}

func (h *JobHandler) cacheAnalytics(ctx context.Context, taskID string, result *analytics.Result) {
	if h.store == nil || h.store.Redis == nil {
		return
	}
	if err := h.store.Redis.CacheAnalytics(ctx, taskID, result); err != nil {
		logger.Warn().Err(err).Str("task_id", taskID).Msg("缓存分析结果失败")
	}
}

// GetHistory 读取最近的搜索记录
func (h *JobHandler) GetHistory(ctx context.Context, limit int) ([]SearchHistoryItem, error) {
	if h.store == nil || h.store.MySQL == nil {
		return []SearchHistoryItem{}, nil
	}
	rows, err := h.store.MySQL.GetSearchHistory(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]SearchHistoryItem, 0, len(rows))
	for _, row := range rows {
		item := SearchHistoryItem{
			SearchID:      row.ID,
			Query:         row.Query,
			Location:      row.Location,
			TotalJobs:     row.TotalJobs,
			MarketReach:   row.MarketReach,
			AverageScore:  row.AverageScore,
			HighMatchJobs: row.HighMatchJobs,
			CreatedAt:     row.CreatedAt,
		}
		if row.Portals != nil {
			_ = json.Unmarshal(row.Portals, &item.Portals)
		}
		items = append(items, item)
	}
	return items, nil
}
