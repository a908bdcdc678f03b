package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server         ServerConfig
	AI             AIConfig
	Storage        StorageConfig
	Conversation   ConversationConfig
	Log            LogConfig
	MetricsEnabled bool
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	conv, err := loadConversationConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	metrics, err := parseBoolEnv("METRICS_ENABLED", true)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:         server,
		AI:             ai,
		Storage:        storage,
		Conversation:   conv,
		Log:            logCfg,
		MetricsEnabled: metrics,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" 与 "127.0.0.1:8080" 原样使用
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// 支持的大模型提供方。
const (
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider string

	// Ark (eino) 配置
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string

	// OpenAI 兼容配置，openai 与 gemini 共用
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled 表示所选提供方是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
		return c.OpenAIAPIKey != "" && c.OpenAIModel != ""
	default:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	}
}

// NewChatModel 使用配置创建一个 Ark 模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() || c.Provider != ProviderArk {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY + Model or ARK_ACCESS_KEY/ARK_SECRET_KEY")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("AI_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("AI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	provider := strings.ToLower(strings.TrimSpace(os.Getenv("AI_PROVIDER")))
	googleKey := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	if provider == "" {
		// 只配置了 Google 密钥时使用 gemini
		if googleKey != "" && os.Getenv("ARK_API_KEY") == "" {
			provider = ProviderGemini
		} else {
			provider = ProviderArk
		}
	}

	cfg := AIConfig{
		Provider:    provider,
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}

	switch provider {
	case ProviderArk:
	case ProviderOpenAI:
		cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		cfg.OpenAIModel = getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini")
		cfg.OpenAIBaseURL = getEnvOrDefault("OPENAI_BASE_URL", "")
	case ProviderGemini:
		cfg.OpenAIAPIKey = googleKey
		cfg.OpenAIModel = getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash")
		cfg.OpenAIBaseURL = getEnvOrDefault("GEMINI_BASE_URL", defaultGeminiBaseURL)
	default:
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	return cfg, nil
}

// 存储驱动。
const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// StorageConfig 描述会话记录的持久化位置。
type StorageConfig struct {
	Driver        string
	KeyPrefix     string
	BoltPath      string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
	PostgresURL   string
}

func loadStorageConfig() (StorageConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", DriverBolt))
	switch driver {
	case DriverMemory, DriverBolt, DriverRedis, DriverPostgres:
	default:
		return StorageConfig{}, fmt.Errorf("invalid STORAGE_DRIVER value %q", driver)
	}

	redisDB := 0
	if db, err := parseOptionalIntEnv("REDIS_DB"); err != nil {
		return StorageConfig{}, err
	} else if db != nil {
		redisDB = *db
	}

	ttl, err := parseDurationEnv("REDIS_TTL", 0)
	if err != nil {
		return StorageConfig{}, err
	}

	cfg := StorageConfig{
		Driver:        driver,
		KeyPrefix:     getEnvOrDefault("STORAGE_KEY_PREFIX", "medical-chat-history"),
		BoltPath:      getEnvOrDefault("STORAGE_BOLT_PATH", "data/conversations.db"),
		RedisAddress:  getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		RedisDB:       redisDB,
		RedisTTL:      ttl,
		PostgresURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}

	if cfg.Driver == DriverPostgres && cfg.PostgresURL == "" {
		return StorageConfig{}, fmt.Errorf("DATABASE_URL must be set when STORAGE_DRIVER=postgres")
	}

	return cfg, nil
}

// ConversationConfig 描述翻译与摘要流程的参数。
type ConversationConfig struct {
	DefaultSessionID string
	TranslateTimeout time.Duration
	SummaryTimeout   time.Duration
}

func loadConversationConfig() (ConversationConfig, error) {
	translate, err := parseDurationEnv("TRANSLATE_TIMEOUT", 30*time.Second)
	if err != nil {
		return ConversationConfig{}, err
	}

	summary, err := parseDurationEnv("SUMMARY_TIMEOUT", 60*time.Second)
	if err != nil {
		return ConversationConfig{}, err
	}

	return ConversationConfig{
		DefaultSessionID: getEnvOrDefault("DEFAULT_SESSION_ID", "default"),
		TranslateTimeout: translate,
		SummaryTimeout:   summary,
	}, nil
}

// LogConfig 描述日志配置。
type LogConfig struct {
	Level  string
	Pretty bool
}

func loadLogConfig() (LogConfig, error) {
	pretty, err := parseBoolEnv("LOG_PRETTY", false)
	if err != nil {
		return LogConfig{}, err
	}
	return LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Pretty: pretty,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
