package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix 是环境变量覆盖的前缀，例如 MARKETPULL_PULL_SYMBOL。
const EnvPrefix = "MARKETPULL"

// knownKeys 需要显式绑定环境变量，viper 的 AutomaticEnv 只认识已出现过的 key。
var knownKeys = []string{
	"app.log_level",
	"app.log_format",
	"app.log_path",
	"pull.symbol",
	"pull.interval",
	"pull.period",
	"pull.limit",
	"pull.probe",
	"binance.spot_base_url",
	"binance.futures_base_url",
	"binance.http_timeout_seconds",
	"binance.proxy_enabled",
	"binance.proxy_url",
	"output.dir",
	"output.chart_file",
	"archive.path",
}

// Load 读取 YAML 配置（path 为空时只用默认值与环境变量），应用默认值并校验。
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	path = strings.TrimSpace(path)
	if path != "" {
		if err := mergeConfigFile(v, path); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}
	if err := bindEnv(v); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	collectSettingsKeys(v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	tmp := viper.New()
	tmp.SetConfigFile(path)
	if err := tmp.ReadInConfig(); err != nil {
		return err
	}
	return v.MergeConfigMap(tmp.AllSettings())
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range knownKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("binding env for %s failed: %w", key, err)
		}
	}
	return nil
}

func collectSettingsKeys(settings map[string]any, dest keySet) {
	if dest == nil || len(settings) == 0 {
		return
	}
	flattenConfigKeys("", settings, dest)
}

func flattenConfigKeys(prefix string, node any, dest keySet) {
	switch val := node.(type) {
	case map[string]any:
		for k, v := range val {
			next := strings.ToLower(strings.TrimSpace(k))
			if next == "" {
				continue
			}
			if prefix != "" {
				next = prefix + "." + next
			}
			flattenConfigKeys(next, v, dest)
		}
	default:
		if prefix != "" {
			dest.mark(prefix)
		}
	}
}
