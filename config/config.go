package config

import (
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

type LoggerConfig struct {
	Development    bool                `yaml:"development"`    // 是否为开发模式
	Type           loggerv2.OutputType `yaml:"type"`           // 日志输出类型
	LogFilePath    string              `yaml:"logFilePath"`    // 日志文件路径
	AutoCreateFile bool                `yaml:"autoCreateFile"` // 是否自动创建文件和目录
}

func (LoggerConfig) Key() string {
	return "log"
}

type DBConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	DBName      string `yaml:"database" mapstructure:"database"`
	TablePrefix string `yaml:"tablePrefix"`
	Location    string `yaml:"location"` // 默认 Asia/Shanghai
	// 连接池配置
	MaxOpenConns    int `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int `yaml:"connMaxLifetime"` // 连接最大生存时间（分钟）
	ConnMaxIdleTime int `yaml:"connMaxIdleTime"` // 连接最大空闲时间（分钟）
}

func (DBConfig) Key() string {
	return "db"
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"password"`
	PoolSize int    `yaml:"poolSize"`
	// 流阻塞读取需要比 judgerWorker.readBlockSeconds 更长的读超时
	ReadTimeoutSeconds int `yaml:"readTimeoutSeconds"`
}

func (RedisConfig) Key() string {
	return "redis"
}

type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	ClientID string   `yaml:"clientID"`
}

func (KafkaConfig) Key() string {
	return "kafka"
}

// Strategy selects the sandbox implementation used by the judge engine.
type Strategy string

const (
	StrategyHost   Strategy = "host"
	StrategyDocker Strategy = "docker"
)

type JudgeConfig struct {
	Strategy              Strategy `yaml:"strategy"`              // host 或 docker
	WorkspaceRoot         string   `yaml:"workspaceRoot"`         // 作业工作目录根路径
	HostBindRoot          string   `yaml:"hostBindRoot"`          // worker 运行在容器内时, 宿主机上对应 workspaceRoot 的路径
	CompileTimeoutSeconds int      `yaml:"compileTimeoutSeconds"` // 不建议低于 10s
	MemoryLimitMB         int      `yaml:"memoryLimitMB"`
	NanoCPUs              int64    `yaml:"nanoCPUs"` // 500000000 即半个核
	PidsLimit             int64    `yaml:"pidsLimit"`
	GraceSeconds          int      `yaml:"graceSeconds"`   // 容器外层超时相对时限的余量
	RetentionHours        int      `yaml:"retentionHours"` // 孤儿工作目录保留时长
	SweepIntervalMinutes  int      `yaml:"sweepIntervalMinutes"`
}

func (JudgeConfig) Key() string {
	return "judge"
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

func (MetricsConfig) Key() string {
	return "metrics"
}
