package handler

import (
	"context"
	"fmt"
	"time"

	"skillfit-go/internal/embedding"
	"skillfit-go/internal/logger"
	"skillfit-go/internal/skills"
	"skillfit-go/internal/storage"
	"skillfit-go/internal/types"

	"github.com/google/uuid"
)

// SearchHistoryItem 搜索历史条目
type SearchHistoryItem struct {
	SearchID      string    `json:"search_id"`
	Query         string    `json:"query"`
	Location      string    `json:"location"`
	Portals       []string  `json:"portals"`
	TotalJobs     int       `json:"total_jobs"`
	MarketReach   float64   `json:"market_reach"`
	AverageScore  float64   `json:"average_score"`
	HighMatchJobs int       `json:"high_match_jobs"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateProfileRequest 创建画像请求
// 原始文本与预提取技能由上游的简历解析层提供
type CreateProfileRequest struct {
	Filename        string   `json:"filename"`
	RawText         string   `json:"raw_text"`
	ExtractedSkills []string `json:"extracted_skills"`
}

// CreateProfileResponse 创建画像响应
type CreateProfileResponse struct {
	ProfileID string `json:"profile_id"`
}

// ConfirmSkillsRequest 确认技能并重建向量的请求
type ConfirmSkillsRequest struct {
	ConfirmedSkills []string `json:"confirmed_skills"`
}

// ProfileHandler 用户画像处理器
type ProfileHandler struct {
	store        *storage.Storage
	embedder     embedding.Embedder
	standardizer *skills.Standardizer
}

// NewProfileHandler 创建画像处理器
func NewProfileHandler(store *storage.Storage, embedder embedding.Embedder, standardizer *skills.Standardizer) *ProfileHandler {
	return &ProfileHandler{
		store:        store,
		embedder:     embedder,
		standardizer: standardizer,
	}
}

// CreateProfile 保存简历文本与预提取技能, 返回画像ID
func (h *ProfileHandler) CreateProfile(ctx context.Context, req *CreateProfileRequest) (*CreateProfileResponse, error) {
	if req.RawText == "" {
		return nil, fmt.Errorf("%w: raw_text不能为空", ErrInvalidRequest)
	}
	if h.store == nil || h.store.MySQL == nil {
		return nil, fmt.Errorf("数据库不可用")
	}

	profile := &types.Profile{
		ID:              uuid.New().String(),
		Filename:        req.Filename,
		RawText:         req.RawText,
		ExtractedSkills: h.standardizer.Standardize(req.ExtractedSkills),
	}
	if err := h.store.MySQL.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("保存画像失败: %w", err)
	}

	logger.Info().
		Str("profile_id", profile.ID).
		Int("extracted_skills", len(profile.ExtractedSkills)).
		Msg("画像已创建")
	return &CreateProfileResponse{ProfileID: profile.ID}, nil
}

// ConfirmSkills 确认技能清单并重新生成两个用户向量
// 向量从原始简历文本和确认后的技能串重建, 旧向量被覆盖
func (h *ProfileHandler) ConfirmSkills(ctx context.Context, profileID string, req *ConfirmSkillsRequest) (*types.Profile, error) {
	if len(req.ConfirmedSkills) == 0 {
		return nil, fmt.Errorf("%w: confirmed_skills不能为空", ErrInvalidRequest)
	}
	if h.store == nil || h.store.MySQL == nil {
		return nil, fmt.Errorf("数据库不可用")
	}

	profile, err := h.store.MySQL.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	confirmed := h.standardizer.Standardize(req.ConfirmedSkills)
	uv, err := embedding.GenerateUserVectors(ctx, h.embedder, profile.RawText, confirmed)
	if err != nil {
		return nil, fmt.Errorf("生成用户向量失败: %w", err)
	}

	if err := h.store.MySQL.UpdateProfileVectors(ctx, profileID, confirmed, uv); err != nil {
		return nil, err
	}

	profile.ConfirmedSkills = confirmed
	profile.GlobalVector = uv.GlobalVector
	profile.SkillVector = uv.SkillVector
	logger.Info().
		Str("profile_id", profileID).
		Int("confirmed_skills", len(confirmed)).
		Msg("画像向量已更新")
	return profile, nil
}

// GetProfile 读取画像, 出于载荷考虑不返回原始向量
func (h *ProfileHandler) GetProfile(ctx context.Context, profileID string) (*types.Profile, error) {
	if h.store == nil || h.store.MySQL == nil {
		return nil, storage.ErrProfileNotFound
	}
	profile, err := h.store.MySQL.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	profile.GlobalVector = nil
	profile.SkillVector = nil
	return profile, nil
}
