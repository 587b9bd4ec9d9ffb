package constants

import "time"

const (
	// VectorDimension 嵌入向量维度 (all-MiniLM-L6-v2 输出维度)
	VectorDimension = 384

	// 混合匹配分数的默认权重: 技能相似度占大头
	DefaultSkillWeight  = 0.6
	DefaultGlobalWeight = 0.4

	// MarketReachThreshold 市场触达率阈值: match_score >= 70 计入触达
	MarketReachThreshold = 70.0
	// HighMatchThreshold 高匹配岗位阈值: match_score >= 60 计入高匹配
	// 注意与 MarketReachThreshold 不同, 两者是独立的策略常量
	HighMatchThreshold = 60.0

	// DefaultPortalLimit 单个招聘门户默认抓取条数
	DefaultPortalLimit = 10

	// DefaultScrapeTimeout 整个抓取任务的默认超时时间
	DefaultScrapeTimeout = 10 * time.Minute

	// DefaultStaleFileTTL 结果目录中过期文件的默认保留时长
	DefaultStaleFileTTL = 24 * time.Hour

	// DefaultCleanupInterval 过期文件清理的默认执行周期
	DefaultCleanupInterval = 30 * time.Minute
)

// 任务生命周期状态
const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"
)

const (
	// SerpAPIKeyEnv 传递给google门户抓取进程的API Key环境变量名
	SerpAPIKeyEnv = "SERP_API_KEY"
)
