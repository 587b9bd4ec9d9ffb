package scraper

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"skillfit-go/internal/logger"
)

// CleanupStaleFiles 删除结果目录中修改时间早于保留期的文件, 返回删除数量
// 目录不存在视为无事可做
func (e *Engine) CleanupStaleFiles() int {
	dir := e.resultsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("dir", dir).Msg("读取结果目录失败")
		}
		return 0
	}

	cutoff := time.Now().Add(-e.cfg.StaleFileTTL())
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("删除过期结果文件失败")
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info().Int("removed", removed).Str("dir", dir).Msg("过期结果文件清理完成")
	}
	return removed
}

// StartCleanupLoop 周期性清理过期结果文件, 直到ctx取消
func (e *Engine) StartCleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.CleanupInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.CleanupStaleFiles()
		}
	}
}
