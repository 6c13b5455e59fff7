package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"marketpull/internal/app"
	"marketpull/internal/config"
	"marketpull/internal/logger"

	"github.com/joho/godotenv"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env 可选，不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}
	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		log.Fatalf("初始化日志文件失败: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.SetFormat(cfg.App.LogFormat)
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("✓ 配置加载成功（symbol=%s interval=%s period=%s output=%s）",
		cfg.Pull.Symbol, cfg.Pull.Interval, cfg.Pull.Period, cfg.Output.Dir)

	a, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("初始化应用失败: %v", err)
	}
	runErr := a.Run(ctx)
	if err := a.Close(); err != nil {
		logger.Warnf("关闭归档失败: %v", err)
	}
	if runErr != nil {
		log.Fatalf("运行失败: %v", runErr)
	}
	a.Summary.Print(os.Stdout)
}

// resolveConfigPath 优先使用 MARKETPULL_CONFIG；默认路径不存在时只用默认值与环境变量。
func resolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv("MARKETPULL_CONFIG")); p != "" {
		return p
	}
	if _, err := os.Stat(defaultConfigPath); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return defaultConfigPath
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
