package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillfit-go/internal/analytics"
	"skillfit-go/internal/api/handler"
	"skillfit-go/internal/api/router"
	"skillfit-go/internal/config"
	"skillfit-go/internal/embedding"
	"skillfit-go/internal/logger"
	"skillfit-go/internal/scorer"
	"skillfit-go/internal/scraper"
	"skillfit-go/internal/simulation"
	"skillfit-go/internal/skills"
	"skillfit-go/internal/storage"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	// .env仅用于本地开发, 不存在时静默跳过
	_ = godotenv.Load()

	configPath := pflag.String("config", "", "配置文件路径, 为空时按默认路径查找")
	addr := pflag.String("addr", "", "HTTP监听地址, 覆盖配置文件")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置文件失败")
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}

	initLogger(cfg)

	ctx := context.Background()
	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储管理器失败")
	}
	defer storageManager.Close()

	// 领域组件装配
	standardizer := skills.NewStandardizer(cfg.Skills.AliasFile)
	embedder, err := embedding.NewHTTPEmbedder(cfg.Embedding)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化嵌入客户端失败")
	}
	weights := scorer.Weights{
		Skill:  cfg.Scoring.SkillWeight,
		Global: cfg.Scoring.GlobalWeight,
	}

	var enricher skills.Enricher
	if cfg.Enricher.ServiceURL != "" {
		enricher = skills.NewHTTPEnricher(cfg.Enricher, standardizer)
		logger.Info().Str("url", cfg.Enricher.ServiceURL).Msg("技能抽取服务已启用")
	} else {
		enricher = skills.NewNoopEnricher(standardizer)
		logger.Info().Msg("技能抽取服务未配置, 仅做技能归一化")
	}

	engine := scraper.NewEngine(&cfg.Scraper, scraper.NewTaskRegistry(), enricher, embedder, weights, storageManager)

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go engine.StartCleanupLoop(cleanupCtx)

	// 模拟需要MySQL中的画像和缓存向量, 数据库不可用时不装配引擎
	var simEngine *simulation.Engine
	if storageManager.MySQL != nil {
		simEngine = simulation.NewEngine(storageManager.MySQL, storageManager.MySQL, embedder, weights)
	} else {
		logger.Warn().Msg("MySQL未连接, 模拟接口不可用")
	}

	handlers := router.Handlers{
		Job:        handler.NewJobHandler(engine, storageManager, analytics.NewAggregator(standardizer)),
		Vector:     handler.NewVectorHandler(),
		Profile:    handler.NewProfileHandler(storageManager, embedder, standardizer),
		Simulation: handler.NewSimulationHandler(simEngine),
	}

	h := server.Default(server.WithHostPorts(cfg.Server.Address))
	hlog.SetLogger(logger.NewHertzLogger())
	router.RegisterRoutes(h, handlers)

	go func() {
		logger.Info().Str("addr", cfg.Server.Address).Msg("HTTP服务器启动")
		h.Spin()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号, 正在优雅退出...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("服务器关闭失败")
	}
	logger.Info().Msg("优雅退出完成")
}

// initLogger 按配置初始化日志系统
func initLogger(cfg *config.Config) {
	logConfig := logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	}
	if logConfig.Level == "" {
		logConfig.Level = "info"
	}
	if logConfig.TimeFormat == "" {
		logConfig.TimeFormat = time.RFC3339
	}
	logger.Init(logConfig)
}
