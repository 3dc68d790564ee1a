package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，如 CHAT_SERVER_PORT 覆盖 server.port
const EnvPrefix = "CHAT"

// Config 聊天室服务的全部配置
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Logger    LoggerConfig    `json:"logger" yaml:"logger" mapstructure:"logger"`
	MySQL     MySQLConfig     `json:"mysql" yaml:"mysql" mapstructure:"mysql"`
	Redis     RedisConfig     `json:"redis" yaml:"redis" mapstructure:"redis"`
	JWT       JWTConfig       `json:"jwt" yaml:"jwt" mapstructure:"jwt"`
	Email     EmailConfig     `json:"email" yaml:"email" mapstructure:"email"`
	MinIO     MinIOConfig     `json:"minio" yaml:"minio" mapstructure:"minio"`
	Async     AsyncConfig     `json:"async" yaml:"async" mapstructure:"async"`
	RateLimit RateLimitConfig `json:"rateLimit" yaml:"rateLimit" mapstructure:"rateLimit"`
}

// Default 返回全部模块的默认配置
func Default() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Logger:    DefaultLoggerConfig(),
		MySQL:     DefaultMySQLConfig(),
		Redis:     DefaultRedisConfig(),
		JWT:       DefaultJWTConfig(),
		Email:     DefaultEmailConfig(),
		MinIO:     DefaultMinIOConfig(),
		Async:     DefaultAsyncConfig(),
		RateLimit: DefaultRateLimitConfig(),
	}
}

// Load 加载配置
// 优先级：环境变量 > 配置文件 > 默认值
//  1. 读取当前目录下的 .env（不存在则忽略）
//  2. 以 Default() 作为默认值
//  3. path 非空时读取 YAML 配置文件
//  4. CHAT_ 前缀环境变量覆盖，另外兼容 JWT_SECRET / EMAIL_USER / EMAIL_PASS
func Load(path string) (*Config, error) {
	// 1. .env 只用于本地开发，缺失不是错误
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())

	// 2. 配置文件
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// 3. 环境变量
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("jwt.secret", EnvPrefix+"_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("email.username", EnvPrefix+"_EMAIL_USERNAME", "EMAIL_USER")
	_ = v.BindEnv("email.password", EnvPrefix+"_EMAIL_PASSWORD", "EMAIL_PASS")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验启动必需的配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("jwt.secret is empty (set JWT_SECRET)")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt.ttl must be positive")
	}
	if c.Server.Port <= 0 {
		return errors.New("server.port must be positive")
	}
	return nil
}

// Addr 返回 HTTP 监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// setDefaults 把默认配置逐项注册进 viper，AutomaticEnv 只对已知 key 生效
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.readTimeout", d.Server.ReadTimeout)
	v.SetDefault("server.writeTimeout", d.Server.WriteTimeout)
	v.SetDefault("server.requestTimeout", d.Server.RequestTimeout)
	v.SetDefault("server.shutdownTimeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.nodeId", d.Server.NodeID)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.encoding", d.Logger.Encoding)
	v.SetDefault("logger.enableColor", d.Logger.EnableColor)
	v.SetDefault("logger.development", d.Logger.Development)
	v.SetDefault("logger.outputPaths", d.Logger.OutputPaths)
	v.SetDefault("logger.errorOutputPaths", d.Logger.ErrorOutputPaths)

	v.SetDefault("mysql.dsn", d.MySQL.DSN)
	v.SetDefault("mysql.replicas", d.MySQL.Replicas)
	v.SetDefault("mysql.maxOpenConns", d.MySQL.MaxOpenConns)
	v.SetDefault("mysql.maxIdleConns", d.MySQL.MaxIdleConns)
	v.SetDefault("mysql.connMaxLifetime", d.MySQL.ConnMaxLifetime)
	v.SetDefault("mysql.slowThreshold", d.MySQL.SlowThreshold)
	v.SetDefault("mysql.logLevel", d.MySQL.LogLevel)
	v.SetDefault("mysql.autoMigrate", d.MySQL.AutoMigrate)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.poolSize", d.Redis.PoolSize)
	v.SetDefault("redis.dialTimeout", d.Redis.DialTimeout)
	v.SetDefault("redis.readTimeout", d.Redis.ReadTimeout)
	v.SetDefault("redis.writeTimeout", d.Redis.WriteTimeout)

	v.SetDefault("jwt.secret", d.JWT.Secret)
	v.SetDefault("jwt.issuer", d.JWT.Issuer)
	v.SetDefault("jwt.ttl", d.JWT.TTL)
	v.SetDefault("jwt.refreshWindow", d.JWT.RefreshWindow)

	v.SetDefault("email.host", d.Email.Host)
	v.SetDefault("email.port", d.Email.Port)
	v.SetDefault("email.username", d.Email.Username)
	v.SetDefault("email.password", d.Email.Password)
	v.SetDefault("email.fromName", d.Email.FromName)
	v.SetDefault("email.breakerMaxFailures", d.Email.BreakerMaxFailures)
	v.SetDefault("email.breakerOpenTimeout", d.Email.BreakerOpenTimeout)
	v.SetDefault("email.sendTimeout", d.Email.SendTimeout)

	v.SetDefault("minio.enabled", d.MinIO.Enabled)
	v.SetDefault("minio.endpoint", d.MinIO.Endpoint)
	v.SetDefault("minio.accessKeyId", d.MinIO.AccessKeyID)
	v.SetDefault("minio.secretAccessKey", d.MinIO.SecretAccessKey)
	v.SetDefault("minio.useSSL", d.MinIO.UseSSL)
	v.SetDefault("minio.bucketName", d.MinIO.BucketName)
	v.SetDefault("minio.location", d.MinIO.Location)
	v.SetDefault("minio.avatarPrefix", d.MinIO.AvatarPrefix)
	v.SetDefault("minio.maxFileSize", d.MinIO.MaxFileSize)
	v.SetDefault("minio.allowedTypes", d.MinIO.AllowedTypes)
	v.SetDefault("minio.uploadTimeout", d.MinIO.UploadTimeout)
	v.SetDefault("minio.publicRead", d.MinIO.PublicRead)
	v.SetDefault("minio.baseUrl", d.MinIO.BaseURL)

	v.SetDefault("async.poolSize", d.Async.PoolSize)
	v.SetDefault("async.maxBlockingTasks", d.Async.MaxBlockingTasks)
	v.SetDefault("async.expiryDuration", d.Async.ExpiryDuration)
	v.SetDefault("async.nonblocking", d.Async.Nonblocking)
	v.SetDefault("async.releaseTimeout", d.Async.ReleaseTimeout)

	v.SetDefault("rateLimit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rateLimit.rate", d.RateLimit.Rate)
	v.SetDefault("rateLimit.burst", d.RateLimit.Burst)
	v.SetDefault("rateLimit.localCapacity", d.RateLimit.LocalCapacity)
}
