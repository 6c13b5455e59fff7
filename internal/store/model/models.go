package model

import (
	"time"

	"gorm.io/datatypes"
)

type PullRunStatus int

const (
	PullRunStatusUnknown   PullRunStatus = 0
	PullRunStatusSucceeded PullRunStatus = 1
	PullRunStatusFailed    PullRunStatus = 2
)

// PullRunModel 记录一次拉取的参数与结果。
type PullRunModel struct {
	ID         int64          `gorm:"column:id;primaryKey"`
	RunID      string         `gorm:"column:run_id;uniqueIndex"`
	Symbol     string         `gorm:"column:symbol;index"`
	Interval   string         `gorm:"column:interval"`
	Period     string         `gorm:"column:period"`
	Status     PullRunStatus  `gorm:"column:status"`
	Error      string         `gorm:"column:error"`
	Warnings   datatypes.JSON `gorm:"column:warnings"`
	StartedAt  time.Time      `gorm:"column:started_at"`
	FinishedAt time.Time      `gorm:"column:finished_at"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (PullRunModel) TableName() string { return "pull_runs" }

// TableSnapshotModel 保存某次拉取产出的一张表，列与行均为 JSON。
type TableSnapshotModel struct {
	ID       int64          `gorm:"column:id;primaryKey"`
	RunID    string         `gorm:"column:run_id;index"`
	Name     string         `gorm:"column:name"`
	RowCount int            `gorm:"column:row_count"`
	Columns  datatypes.JSON `gorm:"column:columns"`
	Rows     datatypes.JSON `gorm:"column:rows"`
}

func (TableSnapshotModel) TableName() string { return "table_snapshots" }
