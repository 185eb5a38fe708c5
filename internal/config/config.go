package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix 环境变量前缀，例如 MMREPORT_SERVER_PORT
const EnvPrefix = "MMREPORT"

// FileName 配置文件名（位于可执行文件同目录）
const FileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server" envconfig:"SERVER"`
	Data   DataConfig   `toml:"data" envconfig:"DATA"`
	Report ReportConfig `toml:"report" envconfig:"REPORT"`
	Google GoogleConfig `toml:"google" envconfig:"GOOGLE"`
	Log    LogConfig    `toml:"log" envconfig:"LOG"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int   `toml:"port" envconfig:"PORT"`
	DevMode     bool  `toml:"dev_mode" envconfig:"DEV_MODE"`
	MaxUploadMB int64 `toml:"max_upload_mb" envconfig:"MAX_UPLOAD_MB"`
}

// DataConfig 数据目录配置
type DataConfig struct {
	DataDir string `toml:"data_dir" envconfig:"DATA_DIR"`
}

// ReportConfig 报表版式与下载配置
type ReportConfig struct {
	TitlePrefix        string  `toml:"title_prefix" envconfig:"TITLE_PREFIX"`
	DefaultMonthLabel  string  `toml:"default_month_label" envconfig:"DEFAULT_MONTH_LABEL"`
	ColumnWidth        float64 `toml:"column_width" envconfig:"COLUMN_WIDTH"`
	DownloadTTLMinutes int     `toml:"download_ttl_minutes" envconfig:"DOWNLOAD_TTL_MINUTES"`
}

// GoogleConfig Google Sheets 配置
type GoogleConfig struct {
	// CredentialsPath 服务账号 JSON；请求中未携带凭据时使用
	CredentialsPath string `toml:"credentials_path" envconfig:"CREDENTIALS_PATH"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level" envconfig:"LEVEL"`
	Format string `toml:"format" envconfig:"FORMAT"`
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20262,
			DevMode:     false,
			MaxUploadMB: 20,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Report: ReportConfig{
			TitlePrefix:        "플랫폼 기술본부 M/M 산정표",
			DefaultMonthLabel:  "선택월",
			ColumnWidth:        14,
			DownloadTTLMinutes: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// MaxUploadBytes 上传大小上限（字节）
func (c *AppConfig) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

// DownloadTTL 下载链接有效期
func (c *AppConfig) DownloadTTL() time.Duration {
	return time.Duration(c.Report.DownloadTTLMinutes) * time.Minute
}

// Validate 校验配置取值
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid server.max_upload_mb: %d", c.Server.MaxUploadMB)
	}
	if c.Report.ColumnWidth <= 0 || c.Report.ColumnWidth > 255 {
		return fmt.Errorf("invalid report.column_width: %v", c.Report.ColumnWidth)
	}
	if c.Report.DownloadTTLMinutes <= 0 {
		return fmt.Errorf("invalid report.download_ttl_minutes: %d", c.Report.DownloadTTLMinutes)
	}
	if c.Data.DataDir == "" {
		return errors.New("data.data_dir is required")
	}
	return nil
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func baseDir() string {
	dir, err := GetExeDir()
	if err != nil {
		return "."
	}
	return dir
}

// LoadConfig 从可执行文件同目录的 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	return Load(filepath.Join(baseDir(), FileName))
}

// Load 加载顺序：默认值 → config.toml（不存在则跳过）→ MMREPORT_* 环境变量
func Load(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// 配置文件不存在，使用默认配置
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save 保存配置到指定路径
func Save(cfg *AppConfig, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DataDir 数据目录绝对路径；相对路径以可执行文件目录为基准
func DataDir(cfg *AppConfig) string {
	if filepath.IsAbs(cfg.Data.DataDir) {
		return cfg.Data.DataDir
	}
	return filepath.Join(baseDir(), cfg.Data.DataDir)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(cfg *AppConfig) (string, error) {
	dataDir := DataDir(cfg)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// ReadCredentials 读取配置中的服务账号 JSON；未配置返回 nil
func ReadCredentials(cfg *AppConfig) ([]byte, error) {
	if cfg.Google.CredentialsPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(cfg.Google.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read google credentials: %w", err)
	}
	return data, nil
}
