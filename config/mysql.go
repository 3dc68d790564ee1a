package config

import "time"

// MySQLConfig 数据库配置
type MySQLConfig struct {
	DSN             string        `json:"dsn" yaml:"dsn" mapstructure:"dsn"`                                     // 主库 DSN
	Replicas        []string      `json:"replicas" yaml:"replicas" mapstructure:"replicas"`                      // 只读从库 DSN，为空则读写都走主库
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns" mapstructure:"maxOpenConns"`          // 最大打开连接数
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns" mapstructure:"maxIdleConns"`          // 最大空闲连接数
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime" mapstructure:"connMaxLifetime"` // 连接最大存活时间
	SlowThreshold   time.Duration `json:"slowThreshold" yaml:"slowThreshold" mapstructure:"slowThreshold"`       // 慢 SQL 阈值
	LogLevel        string        `json:"logLevel" yaml:"logLevel" mapstructure:"logLevel"`                      // gorm 日志级别: silent/error/warn/info
	AutoMigrate     bool          `json:"autoMigrate" yaml:"autoMigrate" mapstructure:"autoMigrate"`             // 启动时自动建表
}

// DefaultMySQLConfig 返回本地开发的默认配置（与 docker-compose.yml 对齐）
func DefaultMySQLConfig() MySQLConfig {
	return MySQLConfig{
		DSN:             "root:root@tcp(mysql:3306)/chat_room?charset=utf8mb4&parseTime=True&loc=Local",
		MaxOpenConns:    100,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   200 * time.Millisecond,
		LogLevel:        "warn",
		AutoMigrate:     true,
	}
}
