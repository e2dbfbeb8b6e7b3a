package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// 支持的输入格式
const (
	FormatAuto     = "auto"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Config 保存转换器的所有配置
type Config struct {
	Debug   bool `mapstructure:"debug"`
	Verbose bool `mapstructure:"verbose"` // 详细模式，输出扫描细节

	MinFieldWidth   int      `mapstructure:"min_field_width"`   // 输入框最小字符宽度
	RevertDelayMs   int      `mapstructure:"revert_delay_ms"`   // 打印动作之后到还原的延迟（毫秒）
	FieldLabel      string   `mapstructure:"field_label"`       // 辅助技术使用的描述标签
	ExtraExemptTags []string `mapstructure:"extra_exempt_tags"` // 固定豁免集之外追加的元素

	Format           string `mapstructure:"format"`            // 输入格式: auto / html / markdown
	SanitizeMarkdown bool   `mapstructure:"sanitize_markdown"` // markdown 转换后做 UGC 清洗
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		MinFieldWidth: 2,
		RevertDelayMs: 1000,
		FieldLabel:    "fill-in blank",
		Format:        FormatAuto,
	}
}

// RevertDelay 以 time.Duration 返回还原延迟
func (c *Config) RevertDelay() time.Duration {
	return time.Duration(c.RevertDelayMs) * time.Millisecond
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if c.MinFieldWidth < 1 {
		return fmt.Errorf("min_field_width must be >= 1, got %d", c.MinFieldWidth)
	}
	if c.RevertDelayMs < 0 {
		return fmt.Errorf("revert_delay_ms must be >= 0, got %d", c.RevertDelayMs)
	}
	switch c.Format {
	case FormatAuto, FormatHTML, FormatMarkdown:
	default:
		return fmt.Errorf("unknown format %q (expect auto, html or markdown)", c.Format)
	}
	return nil
}

// LoadConfig 从文件加载配置
// configPath 为空时搜索当前目录和用户主目录下的 .printfill.yaml；
// 找不到配置文件时使用默认配置
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".printfill")
		v.SetConfigType("yaml")
	}

	// 默认值
	defaults := DefaultConfig()
	v.SetDefault("min_field_width", defaults.MinFieldWidth)
	v.SetDefault("revert_delay_ms", defaults.RevertDelayMs)
	v.SetDefault("field_label", defaults.FieldLabel)
	v.SetDefault("format", defaults.Format)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// 没有配置文件，直接用默认配置
			return defaults, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
