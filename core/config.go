// 此文件处理应用配置，包括从 .env、环境变量和 CLI 参数加载配置
package core

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config 表示 picgo-helper 的完整运行配置
type Config struct {
	Store  StoreConfig  // 配置文档存储
	PicGo  PicGoConfig  // 外部 PicGo CLI
	Server ServerConfig // 本地 HTTP 接口
	Log    LogConfig    // 日志
	Probe  ProbeConfig  // 凭据探测
}

// StoreConfig 配置文档的位置
type StoreConfig struct {
	DataFile string // 配置文档 JSON 文件路径
}

// PicGoConfig PicGo CLI 相关设置
type PicGoConfig struct {
	Bin     string // picgo 可执行文件
	BaseDir string // PicGo 数据目录（插件安装位置）
}

// ServerConfig 本地 HTTP 接口设置
type ServerConfig struct {
	Addr        string   // 监听地址
	CORSOrigins []string // 允许跨域访问的来源，为空时不启用 CORS
}

// LogConfig 日志设置
type LogConfig struct {
	Level  string // debug / info / warn / error
	Format string // text / json
}

// ProbeConfig 凭据探测设置
type ProbeConfig struct {
	RatePerSecond int // 每秒最多探测次数
}

// NewConfig 创建带默认值的配置
func NewConfig() *Config {
	baseDir := defaultBaseDir()
	return &Config{
		Store: StoreConfig{
			DataFile: filepath.Join(baseDir, "picgo-helper.json"),
		},
		PicGo: PicGoConfig{
			Bin:     "picgo",
			BaseDir: baseDir,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:36677",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Probe: ProbeConfig{
			RatePerSecond: 2,
		},
	}
}

// Overrides CLI 参数，空值表示未指定
type Overrides struct {
	DataFile string
	PicGoBin string
	Addr     string
	LogLevel string
}

// LoadEnvFile 加载 .env 文件，文件不存在不是错误
// 已存在的环境变量不会被覆盖
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// LoadConfig 加载配置，优先级：CLI参数 > 环境变量 > 默认值
func LoadConfig(o Overrides) (*Config, error) {
	config := NewConfig()

	// PICGO_HOME 会影响其它路径的默认值，先处理
	if home := os.Getenv("PICGO_HOME"); home != "" {
		config.PicGo.BaseDir = home
		config.Store.DataFile = filepath.Join(home, "picgo-helper.json")
	}
	if dataFile := os.Getenv("PICGO_HELPER_DATA_FILE"); dataFile != "" {
		config.Store.DataFile = dataFile
	}
	if bin := os.Getenv("PICGO_BIN"); bin != "" {
		config.PicGo.Bin = bin
	}
	if addr := os.Getenv("PICGO_HELPER_ADDR"); addr != "" {
		config.Server.Addr = addr
	}
	if origins := os.Getenv("PICGO_HELPER_CORS_ORIGINS"); origins != "" {
		config.Server.CORSOrigins = splitList(origins)
	}
	if level := os.Getenv("PICGO_HELPER_LOG_LEVEL"); level != "" {
		config.Log.Level = strings.ToLower(level)
	}
	if format := os.Getenv("PICGO_HELPER_LOG_FORMAT"); format != "" {
		config.Log.Format = strings.ToLower(format)
	}
	if rate := os.Getenv("PICGO_HELPER_PROBE_RATE"); rate != "" {
		if n, err := strconv.Atoi(rate); err == nil && n > 0 {
			config.Probe.RatePerSecond = n
		}
	}

	// 使用CLI参数覆盖（最高优先级）
	if o.DataFile != "" {
		config.Store.DataFile = o.DataFile
	}
	if o.PicGoBin != "" {
		config.PicGo.Bin = o.PicGoBin
	}
	if o.Addr != "" {
		config.Server.Addr = o.Addr
	}
	if o.LogLevel != "" {
		config.Log.Level = strings.ToLower(o.LogLevel)
	}

	return config, nil
}

// splitList 拆分逗号分隔的列表，忽略空项
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// defaultBaseDir PicGo 默认数据目录 ~/.picgo
func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".picgo"
	}
	return filepath.Join(home, ".picgo")
}
