package skills

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"skillfit-go/internal/config"
	"skillfit-go/internal/logger"
	"skillfit-go/internal/types"
)

// Enricher 技能富集协作方: 为缺少技能的岗位补齐技能列表
// 门户已提供技能的岗位保持原样(仅归一化)
type Enricher interface {
	Enrich(ctx context.Context, jobs []types.Job) []types.Job
}

// HTTPEnricher 调用外部NER服务抽取岗位描述中的技能
type HTTPEnricher struct {
	serviceURL   string
	httpClient   *http.Client
	standardizer *Standardizer
}

// NewHTTPEnricher 创建NER服务客户端
func NewHTTPEnricher(cfg config.EnricherConfig, standardizer *Standardizer) *HTTPEnricher {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPEnricher{
		serviceURL:   cfg.ServiceURL,
		httpClient:   &http.Client{Timeout: timeout},
		standardizer: standardizer,
	}
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Skills []string `json:"skills"`
}

// Enrich 逐岗位补齐技能. 单个岗位抽取失败只记日志, 不影响其余岗位
func (e *HTTPEnricher) Enrich(ctx context.Context, jobs []types.Job) []types.Job {
	extracted, kept := 0, 0
	for i := range jobs {
		if len(jobs[i].Skills) > 0 {
			jobs[i].Skills = e.standardizer.Standardize(jobs[i].Skills)
			kept++
			continue
		}

		if jobs[i].Description == "" || jobs[i].Description == "N/A" {
			jobs[i].Skills = []string{}
			continue
		}

		skillList, err := e.extract(ctx, jobs[i].Description)
		if err != nil {
			logger.Warn().Err(err).Str("title", jobs[i].Title).Msg("技能抽取失败")
			jobs[i].Skills = []string{}
			continue
		}
		jobs[i].Skills = e.standardizer.Standardize(skillList)
		extracted++
	}

	logger.Info().Int("total", len(jobs)).Int("from_scraper", kept).Int("from_ner", extracted).
		Msg("岗位技能富集完成")
	return jobs
}

func (e *HTTPEnricher) extract(ctx context.Context, text string) ([]string, error) {
	body, err := json.Marshal(extractRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.serviceURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("NER服务返回状态 %d: %s", resp.StatusCode, string(data))
	}

	var result extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析NER响应失败: %w", err)
	}
	return result.Skills, nil
}

// NoopEnricher 未配置NER服务时使用, 仅做技能归一化
type NoopEnricher struct {
	standardizer *Standardizer
}

// NewNoopEnricher 创建空实现
func NewNoopEnricher(standardizer *Standardizer) *NoopEnricher {
	return &NoopEnricher{standardizer: standardizer}
}

// Enrich 保留既有技能并归一化, 不做抽取
func (e *NoopEnricher) Enrich(_ context.Context, jobs []types.Job) []types.Job {
	for i := range jobs {
		jobs[i].Skills = e.standardizer.Standardize(jobs[i].Skills)
	}
	return jobs
}
