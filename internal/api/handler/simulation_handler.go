package handler

import (
	"context"
	"fmt"

	"skillfit-go/internal/logger"
	"skillfit-go/internal/simulation"
	"skillfit-go/internal/storage"
	"skillfit-go/internal/types"
)

// SimulationHandler what-if模拟处理器
type SimulationHandler struct {
	engine *simulation.Engine
}

// NewSimulationHandler 创建模拟处理器
func NewSimulationHandler(engine *simulation.Engine) *SimulationHandler {
	return &SimulationHandler{engine: engine}
}

// Simulate 对历史搜索执行技能追加模拟
func (h *SimulationHandler) Simulate(ctx context.Context, searchID string, req *types.SimulationRequest) (*types.SimulationReport, error) {
	if req.ProfileID == "" {
		return nil, fmt.Errorf("%w: profile_id不能为空", ErrInvalidRequest)
	}
	if len(req.AddedSkills) == 0 {
		return nil, fmt.Errorf("%w: added_skills不能为空", ErrInvalidRequest)
	}
	// 数据库不可用时引擎未装配, 画像无从读取
	if h.engine == nil {
		return nil, storage.ErrProfileNotFound
	}

	report, err := h.engine.Simulate(ctx, searchID, *req)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("search_id", searchID).
		Str("profile_id", req.ProfileID).
		Int("jobs_improved", report.JobsImproved).
		Msg("模拟完成")
	return report, nil
}
