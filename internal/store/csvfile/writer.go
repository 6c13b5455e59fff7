package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"marketpull/internal/logger"
	"marketpull/internal/market"
)

// ErrDirMissing 表示输出目录不存在。目录由调用方预先创建，这里不会自动创建。
var ErrDirMissing = errors.New("output directory does not exist")

// Writer 把 market.Table 写成逗号分隔的 CSV：首行列名，无行号列。
type Writer struct {
	Dir string
}

func New(dir string) *Writer {
	return &Writer{Dir: strings.TrimSpace(dir)}
}

// Path returns the file path a table named name is written to.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Write 覆盖写入 {Dir}/{name}。先写同目录临时文件再 rename，
// 失败时不会留下半截文件。
func (w *Writer) Write(ctx context.Context, name string, t *market.Table) error {
	if t == nil {
		return fmt.Errorf("csv %s: nil table", name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.checkDir(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(w.Dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("csv %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := encode(tmp, t); err != nil {
		tmp.Close()
		return fmt.Errorf("csv %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csv %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("csv %s: %w", name, err)
	}
	target := w.Path(name)
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("csv %s: %w", name, err)
	}
	logger.Debugf("[csv] wrote %s (%d rows)", target, t.Len())
	return nil
}

func (w *Writer) checkDir() error {
	info, err := os.Stat(w.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDirMissing, w.Dir)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", w.Dir)
	}
	return nil
}

func encode(f *os.File, t *market.Table) error {
	cw := csv.NewWriter(f)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(market.FormatRow(row, len(t.Columns))); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
