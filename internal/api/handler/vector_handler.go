package handler

import (
	"fmt"

	"skillfit-go/internal/constants"
	"skillfit-go/internal/scorer"
	"skillfit-go/internal/types"
)

// VectorHandler 向量打分处理器, 纯计算无IO
type VectorHandler struct{}

// NewVectorHandler 创建向量打分处理器
func NewVectorHandler() *VectorHandler {
	return &VectorHandler{}
}

// CalculateScore 按混合公式计算一对用户/岗位向量的匹配分
// 权重缺省时使用默认的0.6/0.4
func (h *VectorHandler) CalculateScore(req *types.VectorScoreRequest) (*types.VectorScoreResponse, error) {
	vectors := map[string][]float64{
		"user_global_vector": req.UserGlobalVector,
		"user_skill_vector":  req.UserSkillVector,
		"job_global_vector":  req.JobGlobalVector,
		"job_skill_vector":   req.JobSkillVector,
	}
	for name, v := range vectors {
		if len(v) != constants.VectorDimension {
			return nil, fmt.Errorf("%w: %s 维度必须是 %d, 实际 %d", ErrInvalidRequest, name, constants.VectorDimension, len(v))
		}
	}

	weights := scorer.Weights{Skill: req.SkillWeight, Global: req.GlobalWeight}
	if weights.Skill <= 0 && weights.Global <= 0 {
		weights = scorer.DefaultWeights()
	}

	uv := &types.UserVectors{
		GlobalVector: req.UserGlobalVector,
		SkillVector:  req.UserSkillVector,
	}
	score := scorer.MatchScore(uv, req.JobGlobalVector, req.JobSkillVector, weights)

	return &types.VectorScoreResponse{
		MatchPercentage: score,
		Configuration: types.ScoreConfiguration{
			SkillWeight:  weights.Skill,
			GlobalWeight: weights.Global,
		},
	}, nil
}
