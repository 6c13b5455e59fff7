package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpull/internal/market"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriter_EmptySchemaWritesHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)

	require.NoError(t, w.Write(context.Background(), "open_interest_data.csv", market.OpenInterestSchema.Empty()))
	assert.Equal(t, "symbol,sumOpenInterest,sumOpenInterestValue,timestamp\n", readFile(t, filepath.Join(dir, "open_interest_data.csv")))
}

func TestWriter_RowsAndQuoting(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)

	table := market.NewTable("t", "name", "value", "when", "band")
	table.Append([]any{"a,b", decimal.RequireFromString("1.50"), time.UnixMilli(0).UTC(), decimal.NullDecimal{}})
	table.Append([]any{`say "hi"`, int64(3)})

	require.NoError(t, w.Write(context.Background(), "t.csv", table))
	want := "name,value,when,band\n" +
		"\"a,b\",1.5,1970-01-01 00:00:00.000,\n" +
		"\"say \"\"hi\"\"\",3,,\n"
	assert.Equal(t, want, readFile(t, filepath.Join(dir, "t.csv")))
}

func TestWriter_OverwritesAndIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)
	path := filepath.Join(dir, "x.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the new file\n"), 0o644))

	table := market.NewTable("x", "a")
	table.Append([]any{"1"})
	require.NoError(t, w.Write(context.Background(), "x.csv", table))
	first := readFile(t, path)
	require.NoError(t, w.Write(context.Background(), "x.csv", table))
	assert.Equal(t, "a\n1\n", first)
	assert.Equal(t, first, readFile(t, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriter_MissingDirIsNotCreated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	w := New(dir)

	err := w.Write(context.Background(), "price_data.csv", market.NewTable("p", "a"))
	assert.ErrorIs(t, err, ErrDirMissing)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(t.TempDir()).Write(ctx, "a.csv", market.NewTable("a", "x"))
	assert.ErrorIs(t, err, context.Canceled)
}
