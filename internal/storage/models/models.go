package models

import (
	"time"

	"gorm.io/datatypes"
)

// Profile 用户画像表
// 向量列存放小端float32二进制 (384维 → 1536字节)
type Profile struct {
	ID              string         `gorm:"type:char(36);primaryKey"`
	Filename        string         `gorm:"type:varchar(255)"`
	RawText         string         `gorm:"type:text;not null"`
	ExtractedSkills datatypes.JSON `gorm:"type:json"`
	ConfirmedSkills datatypes.JSON `gorm:"type:json"`
	GlobalVector    []byte         `gorm:"type:mediumblob"`
	SkillVector     []byte         `gorm:"type:mediumblob"`
	CreatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Search 搜索任务表, 一次完成的任务对应一行
type Search struct {
	ID            string         `gorm:"type:char(36);primaryKey"`
	ProfileID     *string        `gorm:"type:char(36);index:idx_searches_profile_id"`
	Query         string         `gorm:"type:varchar(255);not null"`
	Location      string         `gorm:"type:varchar(255)"`
	Portals       datatypes.JSON `gorm:"type:json"`
	TotalJobs     int            `gorm:"default:0"`
	MarketReach   float64        `gorm:"default:0"`
	AverageScore  float64        `gorm:"default:0"`
	HighMatchJobs int            `gorm:"default:0"`
	CreatedAt     time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_searches_created_at"`

	Profile *Profile `gorm:"foreignKey:ProfileID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (Search) TableName() string {
	return "searches"
}

// Job 聚合后的岗位表, 每条岗位归属且仅归属一次搜索
type Job struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement"`
	SearchID    string         `gorm:"type:char(36);not null;index:idx_jobs_search_id"`
	Title       string         `gorm:"type:varchar(512)"`
	Company     string         `gorm:"type:varchar(255)"`
	Location    string         `gorm:"type:varchar(512)"`
	Description string         `gorm:"type:text"`
	Skills      datatypes.JSON `gorm:"type:json"`
	URL         string         `gorm:"type:varchar(1024)"`
	Portal      string         `gorm:"type:varchar(50)"`
	MatchScore  float64        `gorm:"default:0;index:idx_jobs_match_score"`
	CreatedAt   time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`

	Search *Search `gorm:"foreignKey:SearchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Job) TableName() string {
	return "jobs"
}

// JobVector 岗位向量缓存表, what-if模拟免重抓的基础
type JobVector struct {
	JobID        uint64    `gorm:"primaryKey"`
	GlobalVector []byte    `gorm:"type:mediumblob;not null"`
	SkillVector  []byte    `gorm:"type:mediumblob;not null"`
	CreatedAt    time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`

	Job *Job `gorm:"foreignKey:JobID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (JobVector) TableName() string {
	return "job_vectors"
}
