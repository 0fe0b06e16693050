// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 存储应用配置，全部来自环境变量（可选 .env 文件）
type Config struct {
	Port            string
	BackendURL      string        // 生成服务地址，空字符串表示与页面同源
	PublicOrigin    string        // 页面对外的来源，同源部署时生成请求发往这里
	LogDir          string
	LogLevel        string
	DebugMode       bool
	SessionTTL      time.Duration // 空闲会话的保留时间
	GenerateTimeout time.Duration // 0 表示不设超时
	SeedFile        string        // 可选的 YAML 初始项目
	MaxSessions     int           // 同时存在的会话上限，0 表示不限制
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// .env 文件可选，已存在的环境变量优先
	_ = godotenv.Load()

	sessionTTL, err := getEnvDuration("SESSION_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	if sessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL 必须大于 0")
	}

	generateTimeout, err := getEnvDuration("GENERATE_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}
	if generateTimeout < 0 {
		return nil, fmt.Errorf("GENERATE_TIMEOUT 不能为负数")
	}

	publicOrigin, err := parseOrigin("PUBLIC_ORIGIN", getEnv("PUBLIC_ORIGIN", ""))
	if err != nil {
		return nil, err
	}

	maxSessions, err := strconv.Atoi(getEnv("MAX_SESSIONS", "1000"))
	if err != nil || maxSessions < 0 {
		return nil, fmt.Errorf("MAX_SESSIONS 必须是非负整数")
	}

	config := &Config{
		Port:            getEnv("PORT", "8080"),
		BackendURL:      strings.TrimRight(getEnv("BACKEND_URL", ""), "/"),
		LogDir:          getEnv("LOG_DIR", "logs"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		DebugMode:       getEnvBool("DEBUG_MODE", true),
		SessionTTL:      sessionTTL,
		GenerateTimeout: generateTimeout,
		SeedFile:        getEnv("SEED_FILE", ""),
		PublicOrigin:    publicOrigin,
		MaxSessions:     maxSessions,
	}

	return config, nil
}

// GenerationConfigured 是否能确定生成请求的目标地址
func (c *Config) GenerationConfigured() bool {
	return c.BackendURL != "" || c.PublicOrigin != ""
}

// parseOrigin 只接受 scheme://host[:port]，不带路径
func parseOrigin(key, value string) (string, error) {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		return "", nil
	}

	u, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("解析 %s 失败: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || u.Path != "" || u.RawQuery != "" {
		return "", fmt.Errorf("%s 必须是 http(s)://host[:port] 形式: %q", key, value)
	}
	return u.Scheme + "://" + u.Host, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

// getEnvDuration 解析时长，接受 "30m" 这样的写法或纯秒数
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("解析 %s 失败: %w", key, err)
	}
	return d, nil
}
