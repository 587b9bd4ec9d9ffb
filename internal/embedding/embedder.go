package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"skillfit-go/internal/config"
	"skillfit-go/internal/constants"
	"skillfit-go/internal/types"
)

// Embedder 文本嵌入协作方接口
type Embedder interface {
	// EmbedStrings 批量编码文本, 返回与输入等长的向量列表
	EmbedStrings(ctx context.Context, texts []string) ([][]float64, error)
}

// HTTPEmbedder 调用OpenAI兼容的/embeddings端点
type HTTPEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	httpClient *http.Client
}

// NewHTTPEmbedder 创建嵌入服务客户端
func NewHTTPEmbedder(cfg config.EmbeddingConfig) (*HTTPEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("嵌入服务地址不能为空")
	}

	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = constants.VectorDimension
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &HTTPEmbedder{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: dimensions,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Dimensions 返回配置的向量维度
func (e *HTTPEmbedder) Dimensions() int {
	return e.dimensions
}

// embeddingRequest OpenAI兼容的请求结构
type embeddingRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	Dimensions     int      `json:"dimensions,omitempty"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

// embeddingResponse OpenAI兼容的响应结构
type embeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// EmbedStrings 批量编码. 文本先经CleanText清洗, 空文本用占位符避免服务端报错
func (e *HTTPEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	cleaned := make([]string, len(texts))
	for i, text := range texts {
		c := CleanText(text)
		if c == "" {
			c = "empty"
		}
		cleaned[i] = c
	}

	body, err := json.Marshal(embeddingRequest{
		Input:          cleaned,
		Model:          e.model,
		Dimensions:     e.dimensions,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, fmt.Errorf("序列化嵌入请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构建嵌入请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用嵌入服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("嵌入服务返回状态 %d: %s", resp.StatusCode, string(data))
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析嵌入响应失败: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("嵌入服务错误: %s", result.Error.Message)
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("嵌入结果数量不符: 期望%d, 实际%d", len(texts), len(result.Data))
	}

	// 按index还原输入顺序
	sort.Slice(result.Data, func(i, j int) bool {
		return result.Data[i].Index < result.Data[j].Index
	})

	vectors := make([][]float64, len(result.Data))
	for i, entry := range result.Data {
		if len(entry.Embedding) != e.dimensions {
			return nil, fmt.Errorf("向量维度不符: 期望%d, 实际%d", e.dimensions, len(entry.Embedding))
		}
		vectors[i] = entry.Embedding
	}
	return vectors, nil
}

// GenerateUserVectors 根据简历文本和确认技能生成用户的两个画像向量
func GenerateUserVectors(ctx context.Context, e Embedder, resumeText string, confirmedSkills []string) (*types.UserVectors, error) {
	skillString := strings.Join(confirmedSkills, ", ")

	vectors, err := e.EmbedStrings(ctx, []string{resumeText, skillString})
	if err != nil {
		return nil, fmt.Errorf("生成用户向量失败: %w", err)
	}

	return &types.UserVectors{
		GlobalVector: vectors[0],
		SkillVector:  vectors[1],
	}, nil
}

var (
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
	escapedCharRe   = regexp.MustCompile(`\\[ntr]`)
)

// CleanText 向量化前的文本清洗, 处理抓取输出中的转义字符/HTML/特殊符号
func CleanText(text string) string {
	if text == "" || text == "N/A" {
		return ""
	}

	// 抓取器JSON里常见的字面转义序列
	text = escapedCharRe.ReplaceAllString(text, " ")

	text = strings.NewReplacer(
		"₹", "Rs", // 卢比符号
		"–", "-",
		"—", "-",
		"•", " ",
		" ", " ",
	).Replace(text)

	text = htmlTagRe.ReplaceAllString(text, " ")
	text = strings.ToLower(text)
	text = whitespaceRunRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
