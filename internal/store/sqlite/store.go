package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"marketpull/internal/market"
	"marketpull/internal/store"
	"marketpull/internal/store/model"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ArchiveStore 把每次拉取的结果归档到 SQLite，供离线回看。
type ArchiveStore struct {
	db *gorm.DB
}

var _ store.RunArchive = (*ArchiveStore)(nil)

func NewArchiveStore(path string) (*ArchiveStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return NewArchiveStoreFromDB(db)
}

func NewArchiveStoreFromDB(db *gorm.DB) (*ArchiveStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	if err := db.AutoMigrate(&model.PullRunModel{}, &model.TableSnapshotModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}
	return &ArchiveStore{db: db}, nil
}

// SaveRun 在一个事务里写入 run 记录和所有表快照。
func (s *ArchiveStore) SaveRun(ctx context.Context, run store.Run) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("archive store not initialized")
	}
	runModel, err := newPullRunModel(run)
	if err != nil {
		return err
	}
	snapshots, err := newSnapshotModels(run.RunID, run.Tables)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&runModel).Error; err != nil {
			return fmt.Errorf("insert pull run: %w", err)
		}
		if len(snapshots) == 0 {
			return nil
		}
		if err := tx.Create(&snapshots).Error; err != nil {
			return fmt.Errorf("insert table snapshots: %w", err)
		}
		return nil
	})
}

// ListRuns returns the most recent runs first.
func (s *ArchiveStore) ListRuns(ctx context.Context, limit int) ([]model.PullRunModel, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []model.PullRunModel
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (s *ArchiveStore) Snapshots(ctx context.Context, runID string) ([]model.TableSnapshotModel, error) {
	var out []model.TableSnapshotModel
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("name ASC").Find(&out).Error
	return out, err
}

func (s *ArchiveStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newPullRunModel(run store.Run) (model.PullRunModel, error) {
	warnings, err := json.Marshal(nonNil(run.Warnings))
	if err != nil {
		return model.PullRunModel{}, err
	}
	m := model.PullRunModel{
		RunID:      run.RunID,
		Symbol:     run.Symbol,
		Interval:   run.Interval,
		Period:     run.Period,
		Status:     model.PullRunStatusSucceeded,
		Warnings:   datatypes.JSON(warnings),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if run.Err != nil {
		m.Status = model.PullRunStatusFailed
		m.Error = run.Err.Error()
	}
	return m, nil
}

func newSnapshotModels(runID string, tables map[string]*market.Table) ([]model.TableSnapshotModel, error) {
	names := make([]string, 0, len(tables))
	for name, t := range tables {
		if t != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]model.TableSnapshotModel, 0, len(names))
	for _, name := range names {
		t := tables[name]
		cols, err := json.Marshal(t.Columns)
		if err != nil {
			return nil, err
		}
		rows := make([][]string, 0, t.Len())
		for _, row := range t.Rows {
			rows = append(rows, market.FormatRow(row, len(t.Columns)))
		}
		rowsJSON, err := json.Marshal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, model.TableSnapshotModel{
			RunID:    runID,
			Name:     name,
			RowCount: t.Len(),
			Columns:  datatypes.JSON(cols),
			Rows:     datatypes.JSON(rowsJSON),
		})
	}
	return out, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
