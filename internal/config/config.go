// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（JWT 密钥、数据库密码）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// StoreBackend 持久化后端类型
type StoreBackend string

const (
	BackendMongo    StoreBackend = "mongo"
	BackendSQLite   StoreBackend = "sqlite"
	BackendPostgres StoreBackend = "postgres"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Auth     AuthConfig     `yaml:"auth"`
}

type ServerConfig struct {
	Port          string `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
	BodyLimitMB   int    `yaml:"body_limit_mb"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"` // mongo | sqlite | postgres
}

type MongoConfig struct {
	URI string `yaml:"uri"`
	DB  string `yaml:"db"`
}

type DatabaseConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	User    string `yaml:"user"`
	Name    string `yaml:"name"`
	SSLMode string `yaml:"sslmode"`
	// SQLitePath backend=sqlite 时的数据库文件路径
	SQLitePath string `yaml:"sqlite_path"`
}

type RedisConfig struct {
	URL string `yaml:"url"` // 空为不启用 Redis（缓存与事件总线走进程内实现）
}

// MinIOConfig 对象存储配置，Endpoint 为空时附件内嵌在文档中
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AuthConfig struct {
	// TokenTTL 形如 "1h" 的时长字符串
	TokenTTL string `yaml:"token_ttl"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env           Environment
	APIPort       string
	AllowedOrigin string
	BodyLimit     int64

	StoreBackend StoreBackend
	MongoURI     string
	MongoDB      string
	DatabaseURL  string
	SQLitePath   string

	RedisURL string
	MinIO    MinIOConfig

	JWTSecret string
	TokenTTL  time.Duration
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 构建最终配置
func Load() *Config {
	// 加载 .env
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// 解析环境
	env := parseEnv(getEnv("APP_ENV", "dev"))

	// 加载 YAML 配置
	yamlCfg := loadYAMLConfig(env)

	// 敏感信息只从环境变量读取
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		if env == EnvProduction {
			log.Fatal("JWT_SECRET is required in production")
		}
		// 仅限非生产环境的占位密钥
		jwtSecret = "dev-insecure-secret"
		log.Println("WARNING: JWT_SECRET not set, using insecure dev secret")
	}
	dbPassword := getEnv("DB_PASSWORD", "leavedesk_dev_password")

	minioCfg := yamlCfg.MinIO
	minioCfg.AccessKey = getEnv("MINIO_ACCESS_KEY", minioCfg.AccessKey)
	minioCfg.SecretKey = getEnv("MINIO_SECRET_KEY", minioCfg.SecretKey)

	cfg := &Config{
		Env:           env,
		APIPort:       getEnv("PORT", yamlCfg.Server.Port),
		AllowedOrigin: getEnv("ORIGIN_URL", yamlCfg.Server.AllowedOrigin),
		BodyLimit:     int64(yamlCfg.Server.BodyLimitMB) << 20,
		StoreBackend:  parseBackend(getEnv("STORE_BACKEND", yamlCfg.Store.Backend)),
		MongoURI:      getEnv("MONGO_URL", yamlCfg.Mongo.URI),
		MongoDB:       yamlCfg.Mongo.DB,
		DatabaseURL:   getEnv("DATABASE_URL", buildDatabaseURL(yamlCfg.Database, dbPassword)),
		SQLitePath:    yamlCfg.Database.SQLitePath,
		RedisURL:      getEnv("REDIS_URL", yamlCfg.Redis.URL),
		MinIO:         minioCfg,
		JWTSecret:     jwtSecret,
		TokenTTL:      parseDuration(yamlCfg.Auth.TokenTTL, time.Hour),
	}

	cfg.validate()
	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	// 1. 初始化默认值
	cfg := &YAMLConfig{
		Server:   ServerConfig{Port: "8080", AllowedOrigin: "http://localhost:3000", BodyLimitMB: 5},
		Store:    StoreConfig{Backend: "mongo"},
		Mongo:    MongoConfig{URI: "mongodb://localhost:27017", DB: "leavedesk"},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "leavedesk", Name: "leavedesk", SSLMode: "disable", SQLitePath: "leavedesk.db"},
		Auth:     AuthConfig{TokenTTL: "1h"},
	}

	// 2. 加载 common.yaml（公共配置）
	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	// 3. 加载 {env}.yaml（环境特定配置，覆盖公共配置）
	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// buildDatabaseURL 构建 PostgreSQL 连接字符串
func buildDatabaseURL(db DatabaseConfig, password string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		db.User, password, db.Host, db.Port, db.Name, db.SSLMode)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func parseBackend(s string) StoreBackend {
	switch strings.ToLower(s) {
	case "sqlite":
		return BackendSQLite
	case "postgres", "postgresql":
		return BackendPostgres
	default:
		return BackendMongo
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Backend: %s, Mongo: %s, DB: %s, Redis: %s}",
		c.Env, c.StoreBackend, c.MongoURI, maskPassword(c.DatabaseURL), c.RedisURL)
}

// maskPassword 隐藏密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:]+:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}

// validate 验证并填充默认值
func (c *Config) validate() {
	if c.APIPort == "" {
		c.APIPort = "8080"
	}
	if c.BodyLimit <= 0 {
		c.BodyLimit = 5 << 20
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = time.Hour
	}
}
