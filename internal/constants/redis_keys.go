package constants

import "time"

// Redis Key 前缀和格式常量
// 统一命名规范: skillfit:{version}:{entity}:{unique_id}
const (
	// RedisKeyPrefix 是所有Redis Key的统一应用前缀
	RedisKeyPrefix = "skillfit:v1:"

	// KeySearchResult 已完成搜索的最终JSON工件缓存
	// 格式: skillfit:v1:search_result:{task_id}
	KeySearchResult = RedisKeyPrefix + "search_result:"

	// KeySearchAnalytics 搜索分析结果缓存
	// 格式: skillfit:v1:search_analytics:{task_id}
	KeySearchAnalytics = RedisKeyPrefix + "search_analytics:"

	// SearchResultCacheTTL 搜索结果缓存默认过期时间
	SearchResultCacheTTL = 24 * time.Hour
)
