package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skillfit-go/internal/config"
	"skillfit-go/internal/storage/models"
	"skillfit-go/internal/types"
	"skillfit-go/internal/vector"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var mysqlTracer = otel.Tracer("skillfit-go/storage/mysql")

var (
	// ErrProfileNotFound 画像不存在
	ErrProfileNotFound = errors.New("profile not found")
	// ErrSearchNotFound 搜索不存在
	ErrSearchNotFound = errors.New("search not found")
)

// MySQL 关系型存储适配器
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL连接并按需迁移表结构
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil || cfg.Host == "" {
		return nil, fmt.Errorf("MySQL配置不完整")
	}

	logLevel := gormlogger.Warn
	switch cfg.LogLevel {
	case "silent":
		logLevel = gormlogger.Silent
	case "error":
		logLevel = gormlogger.Error
	case "info":
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接池失败: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	m := &MySQL{db: db, cfg: cfg}
	if cfg.AutoMigrate {
		if err := m.autoMigrateSchema(); err != nil {
			return nil, fmt.Errorf("迁移表结构失败: %w", err)
		}
	}
	return m, nil
}

func (m *MySQL) autoMigrateSchema() error {
	return m.db.AutoMigrate(
		&models.Profile{},
		&models.Search{},
		&models.Job{},
		&models.JobVector{},
	)
}

// DB 返回底层GORM句柄
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭连接池
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveProfile 保存新画像, 返回前会把技能列表编码为JSON列
func (m *MySQL) SaveProfile(ctx context.Context, profile *types.Profile) error {
	extracted, err := json.Marshal(profile.ExtractedSkills)
	if err != nil {
		return fmt.Errorf("编码已提取技能失败: %w", err)
	}
	confirmed, err := json.Marshal(profile.ConfirmedSkills)
	if err != nil {
		return fmt.Errorf("编码已确认技能失败: %w", err)
	}

	row := models.Profile{
		ID:              profile.ID,
		Filename:        profile.Filename,
		RawText:         profile.RawText,
		ExtractedSkills: datatypes.JSON(extracted),
		ConfirmedSkills: datatypes.JSON(confirmed),
	}
	if len(profile.GlobalVector) > 0 {
		row.GlobalVector = vector.Encode(profile.GlobalVector)
	}
	if len(profile.SkillVector) > 0 {
		row.SkillVector = vector.Encode(profile.SkillVector)
	}

	return m.db.WithContext(ctx).Create(&row).Error
}

// UpdateProfileVectors 更新确认技能和两个画像向量
func (m *MySQL) UpdateProfileVectors(ctx context.Context, profileID string, confirmedSkills []string, uv *types.UserVectors) error {
	confirmed, err := json.Marshal(confirmedSkills)
	if err != nil {
		return fmt.Errorf("编码已确认技能失败: %w", err)
	}

	result := m.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profileID).
		Updates(map[string]interface{}{
			"confirmed_skills": datatypes.JSON(confirmed),
			"global_vector":    vector.Encode(uv.GlobalVector),
			"skill_vector":     vector.Encode(uv.SkillVector),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// GetProfile 按ID读取画像, 解码技能和向量
func (m *MySQL) GetProfile(ctx context.Context, profileID string) (*types.Profile, error) {
	var row models.Profile
	err := m.db.WithContext(ctx).First(&row, "id = ?", profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	profile := &types.Profile{
		ID:       row.ID,
		Filename: row.Filename,
		RawText:  row.RawText,
	}
	if len(row.ExtractedSkills) > 0 {
		if err := json.Unmarshal(row.ExtractedSkills, &profile.ExtractedSkills); err != nil {
			return nil, fmt.Errorf("解码已提取技能失败: %w", err)
		}
	}
	if len(row.ConfirmedSkills) > 0 {
		if err := json.Unmarshal(row.ConfirmedSkills, &profile.ConfirmedSkills); err != nil {
			return nil, fmt.Errorf("解码已确认技能失败: %w", err)
		}
	}
	if len(row.GlobalVector) > 0 {
		if profile.GlobalVector, err = vector.Decode(row.GlobalVector); err != nil {
			return nil, fmt.Errorf("解码全局向量失败: %w", err)
		}
	}
	if len(row.SkillVector) > 0 {
		if profile.SkillVector, err = vector.Decode(row.SkillVector); err != nil {
			return nil, fmt.Errorf("解码技能向量失败: %w", err)
		}
	}
	return profile, nil
}

// SaveSearch 登记一次搜索任务
func (m *MySQL) SaveSearch(ctx context.Context, searchID, profileID, query, location string, portals []string) error {
	portalsJSON, err := json.Marshal(portals)
	if err != nil {
		return fmt.Errorf("编码门户列表失败: %w", err)
	}

	row := models.Search{
		ID:       searchID,
		Query:    query,
		Location: location,
		Portals:  datatypes.JSON(portalsJSON),
	}
	if profileID != "" {
		row.ProfileID = &profileID
	}
	return m.db.WithContext(ctx).Create(&row).Error
}

// UpdateSearchScores 回填搜索的市场统计
func (m *MySQL) UpdateSearchScores(ctx context.Context, searchID string, totalJobs int, marketReach, averageScore float64, highMatchJobs int) error {
	result := m.db.WithContext(ctx).Model(&models.Search{}).
		Where("id = ?", searchID).
		Updates(map[string]interface{}{
			"total_jobs":      totalJobs,
			"market_reach":    marketReach,
			"average_score":   averageScore,
			"high_match_jobs": highMatchJobs,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSearchNotFound
	}
	return nil
}

// GetSearchHistory 读取最近的搜索记录
func (m *MySQL) GetSearchHistory(ctx context.Context, limit int) ([]models.Search, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.Search
	err := m.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// SaveJobsBatch 批量保存一次搜索的岗位及其向量缓存, 同一事务内完成
func (m *MySQL) SaveJobsBatch(ctx context.Context, searchID string, jobs []types.Job) error {
	ctx, span := mysqlTracer.Start(ctx, "mysql.SaveJobsBatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("search.id", searchID),
		attribute.Int("jobs.count", len(jobs)),
	)

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range jobs {
			skillsJSON, err := json.Marshal(jobs[i].Skills)
			if err != nil {
				return fmt.Errorf("编码岗位技能失败: %w", err)
			}

			row := models.Job{
				SearchID:    searchID,
				Title:       jobs[i].Title,
				Company:     jobs[i].Company,
				Location:    jobs[i].Location,
				Description: jobs[i].Description,
				Skills:      datatypes.JSON(skillsJSON),
				URL:         jobs[i].URL,
				Portal:      jobs[i].Portal,
				MatchScore:  jobs[i].MatchScore,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}

			if len(jobs[i].GlobalVector) > 0 && len(jobs[i].SkillVector) > 0 {
				jobVector := models.JobVector{
					JobID:        row.ID,
					GlobalVector: vector.Encode(jobs[i].GlobalVector),
					SkillVector:  vector.Encode(jobs[i].SkillVector),
				}
				if err := tx.Create(&jobVector).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
	return err
}

// GetJobsBySearch 读取一次搜索的全部岗位, 按match_score降序
func (m *MySQL) GetJobsBySearch(ctx context.Context, searchID string) ([]types.Job, error) {
	var rows []models.Job
	err := m.db.WithContext(ctx).
		Where("search_id = ?", searchID).
		Order("match_score DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	jobs := make([]types.Job, 0, len(rows))
	for _, row := range rows {
		job := types.Job{
			ID:          row.ID,
			Title:       row.Title,
			Company:     row.Company,
			Location:    row.Location,
			Description: row.Description,
			URL:         row.URL,
			Portal:      row.Portal,
			MatchScore:  row.MatchScore,
		}
		if len(row.Skills) > 0 {
			if err := json.Unmarshal(row.Skills, &job.Skills); err != nil {
				return nil, fmt.Errorf("解码岗位技能失败: %w", err)
			}
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// GetJobVectorsBySearch 读取一次搜索的岗位向量缓存
// 解码失败的行跳过, 不中断整体读取
func (m *MySQL) GetJobVectorsBySearch(ctx context.Context, searchID string) ([]types.JobVectorPair, error) {
	ctx, span := mysqlTracer.Start(ctx, "mysql.GetJobVectorsBySearch")
	defer span.End()
	span.SetAttributes(attribute.String("search.id", searchID))

	var rows []models.JobVector
	err := m.db.WithContext(ctx).
		Joins("JOIN jobs ON jobs.id = job_vectors.job_id").
		Where("jobs.search_id = ?", searchID).
		Find(&rows).Error
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	pairs := make([]types.JobVectorPair, 0, len(rows))
	for _, row := range rows {
		globalVec, err := vector.Decode(row.GlobalVector)
		if err != nil {
			continue
		}
		skillVec, err := vector.Decode(row.SkillVector)
		if err != nil {
			continue
		}
		pairs = append(pairs, types.JobVectorPair{
			JobID:        row.JobID,
			GlobalVector: globalVec,
			SkillVector:  skillVec,
		})
	}
	return pairs, nil
}
