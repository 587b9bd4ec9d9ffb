package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"skillfit-go/internal/constants"

	"gopkg.in/yaml.v3"
)

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	Address string `yaml:"address"` // 监听地址, 例如 ":8080"
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"` // json 或 pretty
	TimeFormat   string `yaml:"time_format"`
	ReportCaller bool   `yaml:"report_caller"`
}

// MySQLConfig MySQL配置
type MySQLConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	Charset         string `yaml:"charset"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"` // 连接最大生命周期(分钟)
	LogLevel        string `yaml:"log_level"`                 // GORM日志级别: silent, error, warn, info
	AutoMigrate     bool   `yaml:"auto_migrate"`
}

// DSN 构建MySQL连接串
func (c *MySQLConfig) DSN() string {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, charset)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	// 搜索结果缓存过期时间(小时), 0表示使用默认值
	ResultCacheTTLHours int `yaml:"result_cache_ttl_hours"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	BucketName      string `yaml:"bucketName"`
	Location        string `yaml:"location"`
}

// ScraperConfig 抓取编排配置
type ScraperConfig struct {
	// ScriptDir 门户抓取脚本所在目录, 子进程的工作目录固定为该目录
	ScriptDir string `yaml:"script_dir"`
	// ResultsDir 门户输出文件和最终工件的存放目录, 相对于ScriptDir或绝对路径
	ResultsDir string `yaml:"results_dir"`
	// Interpreter 启动抓取脚本的解释器, 例如 "python"
	Interpreter string `yaml:"interpreter"`
	// DefaultLimit 单门户默认抓取条数
	DefaultLimit int `yaml:"default_limit"`
	// TimeoutMinutes 整个抓取任务的超时(分钟), 0表示使用默认值
	TimeoutMinutes int `yaml:"timeout_minutes"`
	// SerpAPIKey google门户使用的SerpAPI密钥, 可由环境变量覆盖
	SerpAPIKey string `yaml:"serp_api_key"`
	// StaleFileTTLHours 结果目录中文件的保留时长(小时), 0表示使用默认值
	StaleFileTTLHours int `yaml:"stale_file_ttl_hours"`
	// CleanupIntervalMinutes 过期文件清理周期(分钟), 0表示使用默认值
	CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes"`
}

// Timeout 返回抓取任务超时时间
func (c *ScraperConfig) Timeout() time.Duration {
	if c.TimeoutMinutes <= 0 {
		return constants.DefaultScrapeTimeout
	}
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// StaleFileTTL 返回结果文件的保留时长
func (c *ScraperConfig) StaleFileTTL() time.Duration {
	if c.StaleFileTTLHours <= 0 {
		return constants.DefaultStaleFileTTL
	}
	return time.Duration(c.StaleFileTTLHours) * time.Hour
}

// CleanupInterval 返回过期文件清理周期
func (c *ScraperConfig) CleanupInterval() time.Duration {
	if c.CleanupIntervalMinutes <= 0 {
		return constants.DefaultCleanupInterval
	}
	return time.Duration(c.CleanupIntervalMinutes) * time.Minute
}

// EmbeddingConfig 嵌入服务配置 (OpenAI兼容的/embeddings端点)
type EmbeddingConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key,omitempty"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	TimeoutSec int    `yaml:"timeout_seconds"`
}

// EnricherConfig 技能抽取(NER)服务配置
type EnricherConfig struct {
	// ServiceURL 技能抽取HTTP服务地址, 为空时跳过抽取
	ServiceURL string `yaml:"service_url"`
	TimeoutSec int    `yaml:"timeout_seconds"`
}

// ScoringConfig 混合打分权重配置
type ScoringConfig struct {
	SkillWeight  float64 `yaml:"skill_weight"`
	GlobalWeight float64 `yaml:"global_weight"`
}

// SkillsConfig 技能标准化配置
type SkillsConfig struct {
	// AliasFile 技能别名JSON文件路径, 为空时使用内置别名表
	AliasFile string `yaml:"alias_file"`
}

// Config 应用程序配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logger    LoggerConfig    `yaml:"logger"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	MinIO     MinIOConfig     `yaml:"minio"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Enricher  EnricherConfig  `yaml:"enricher"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Skills    SkillsConfig    `yaml:"skills"`
}

// LoadConfig 加载配置文件
// configPath为空时按搜索路径查找config.yaml, 找不到时返回默认配置
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		searchPaths := []string{"config.yaml", filepath.Join("config", "config.yaml")}

		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			searchPaths = append(searchPaths,
				filepath.Join(execDir, "config.yaml"),
				filepath.Join(execDir, "..", "config.yaml"))
		}

		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}

		if configPath == "" {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyEnvOverrides(config)
	applyDefaults(config)

	return config, nil
}

// applyEnvOverrides 从环境变量覆盖敏感配置项
func applyEnvOverrides(config *Config) {
	if v := os.Getenv(constants.SerpAPIKeyEnv); v != "" {
		config.Scraper.SerpAPIKey = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		config.MySQL.Password = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		config.Embedding.APIKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		config.MinIO.SecretAccessKey = v
	}
}

// applyDefaults 填补缺失的配置项
func applyDefaults(config *Config) {
	if config.Server.Address == "" {
		config.Server.Address = ":8080"
	}
	if config.Scraper.Interpreter == "" {
		config.Scraper.Interpreter = "python"
	}
	if config.Scraper.DefaultLimit <= 0 {
		config.Scraper.DefaultLimit = constants.DefaultPortalLimit
	}
	if config.Scraper.ResultsDir == "" {
		config.Scraper.ResultsDir = "results"
	}
	if config.Embedding.Model == "" {
		config.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if config.Embedding.Dimensions <= 0 {
		config.Embedding.Dimensions = constants.VectorDimension
	}
	if config.Scoring.SkillWeight <= 0 && config.Scoring.GlobalWeight <= 0 {
		config.Scoring.SkillWeight = constants.DefaultSkillWeight
		config.Scoring.GlobalWeight = constants.DefaultGlobalWeight
	}
}

// DefaultConfig 返回内置默认配置, 主要用于测试环境
func DefaultConfig() *Config {
	config := &Config{}
	config.Server.Address = ":8080"
	config.Logger = LoggerConfig{Level: "info", Format: "json"}
	config.Scraper = ScraperConfig{
		ScriptDir:    "scraper",
		ResultsDir:   "results",
		Interpreter:  "python",
		DefaultLimit: constants.DefaultPortalLimit,
	}
	config.Embedding = EmbeddingConfig{
		BaseURL:    "http://localhost:8090/v1/embeddings",
		Model:      "all-MiniLM-L6-v2",
		Dimensions: constants.VectorDimension,
	}
	config.Scoring = ScoringConfig{
		SkillWeight:  constants.DefaultSkillWeight,
		GlobalWeight: constants.DefaultGlobalWeight,
	}
	return config
}
