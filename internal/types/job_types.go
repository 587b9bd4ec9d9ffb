package types

// Portal 招聘门户标识
type Portal string

const (
	// PortalLinkedIn LinkedIn门户
	PortalLinkedIn Portal = "linkedin"
	// PortalIndeed Indeed门户
	PortalIndeed Portal = "indeed"
	// PortalGlassdoor Glassdoor门户
	PortalGlassdoor Portal = "glassdoor"
	// PortalNaukri Naukri门户
	PortalNaukri Portal = "naukri"
	// PortalGoogle Google Jobs门户 (经SerpAPI)
	PortalGoogle Portal = "google"
)

// Job 一条聚合后的岗位数据
// 向量字段仅在内部流转和模拟缓存时保留, 对外输出时剔除
type Job struct {
	// ID 数据库主键, 仅在从MySQL读取时填充
	ID          uint64   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	URL         string   `json:"url"`
	Portal      string   `json:"portal"`
	MatchScore  float64  `json:"match_score"`

	// 岗位描述与技能串的嵌入向量, 各384维
	GlobalVector []float64 `json:"global_vector,omitempty"`
	SkillVector  []float64 `json:"skill_vector,omitempty"`
}

// DropVectors 清除岗位上的原始向量 (持久化后对外输出前调用)
func (j *Job) DropVectors() {
	j.GlobalVector = nil
	j.SkillVector = nil
}

// UserVectors 用户画像的两个嵌入向量
type UserVectors struct {
	GlobalVector []float64 `json:"global_vector"`
	SkillVector  []float64 `json:"skill_vector"`
}

// Valid 两个向量均非空时为有效
func (u *UserVectors) Valid() bool {
	return u != nil && len(u.GlobalVector) > 0 && len(u.SkillVector) > 0
}

// SearchArtifact 一次搜索任务的最终JSON工件
// 四个统计字段仅在提供了用户向量(完成打分)时出现
type SearchArtifact struct {
	TaskID        string   `json:"task_id"`
	Query         string   `json:"query"`
	Location      string   `json:"location"`
	Jobs          []Job    `json:"jobs"`
	MarketReach   *float64 `json:"market_reach,omitempty"`
	AverageScore  *float64 `json:"average_score,omitempty"`
	TotalJobs     *int     `json:"total_jobs,omitempty"`
	HighMatchJobs *int     `json:"high_match_jobs,omitempty"`
}

// SerpAPIConfig google门户的SerpAPI参数
type SerpAPIConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	NumJobs int    `json:"num_jobs,omitempty"`
}

// SearchRequest 发起搜索的请求体
type SearchRequest struct {
	Query         string         `json:"query"`
	Location      string         `json:"location"`
	Portals       []string       `json:"portals"`
	ProfileID     string         `json:"profile_id,omitempty"`
	UserVectors   *UserVectors   `json:"user_vectors,omitempty"`
	SerpAPIConfig *SerpAPIConfig `json:"serp_api_config,omitempty"`
}

// SearchResponse 发起搜索的响应体
type SearchResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// TaskStatusResponse 任务状态查询响应
type TaskStatusResponse struct {
	TaskID string   `json:"task_id"`
	Status string   `json:"status"`
	Logs   []string `json:"logs"`
}

// VectorScoreRequest 单次打分API请求
type VectorScoreRequest struct {
	UserGlobalVector []float64 `json:"user_global_vector"`
	UserSkillVector  []float64 `json:"user_skill_vector"`
	JobGlobalVector  []float64 `json:"job_global_vector"`
	JobSkillVector   []float64 `json:"job_skill_vector"`
	SkillWeight      float64   `json:"skill_weight,omitempty"`
	GlobalWeight     float64   `json:"global_weight,omitempty"`
}

// VectorScoreResponse 单次打分API响应
type VectorScoreResponse struct {
	MatchPercentage float64            `json:"match_percentage"`
	Configuration   ScoreConfiguration `json:"configuration"`
}

// ScoreConfiguration 打分所用权重配置的回显
type ScoreConfiguration struct {
	SkillWeight  float64 `json:"skill_weight"`
	GlobalWeight float64 `json:"global_weight"`
}

// SimulationRequest what-if模拟请求
type SimulationRequest struct {
	ProfileID   string   `json:"profile_id"`
	AddedSkills []string `json:"added_skills"`
}

// ImprovedJob 模拟后分数提升的岗位
type ImprovedJob struct {
	ID       uint64  `json:"id"`
	Title    string  `json:"title"`
	Company  string  `json:"company"`
	OldScore float64 `json:"old_score"`
	NewScore float64 `json:"new_score"`
	Delta    float64 `json:"delta"`
}

// SimulationReport what-if模拟的增量报告
// reach 相关字段使用高匹配阈值60, 与搜索工件的 market_reach(70) 不是同一口径
type SimulationReport struct {
	OriginalAvgScore float64       `json:"original_avg_score"`
	NewAvgScore      float64       `json:"new_avg_score"`
	ScoreDelta       float64       `json:"score_delta"`
	OriginalReach    float64       `json:"original_reach"`
	NewReach         float64       `json:"new_reach"`
	ReachDelta       float64       `json:"reach_delta"`
	JobsImproved     int           `json:"jobs_improved"`
	TopImprovements  []ImprovedJob `json:"top_improvements"`
}

// Profile 用户画像 (由简历解析层提供原始文本与预提取技能)
type Profile struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename,omitempty"`
	RawText         string    `json:"raw_text"`
	ExtractedSkills []string  `json:"extracted_skills"`
	ConfirmedSkills []string  `json:"confirmed_skills"`
	GlobalVector    []float64 `json:"global_vector,omitempty"`
	SkillVector     []float64 `json:"skill_vector,omitempty"`
}

// JobVectorPair 某个岗位的缓存向量对
type JobVectorPair struct {
	JobID        uint64
	GlobalVector []float64
	SkillVector  []float64
}
