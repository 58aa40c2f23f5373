package ioc

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/spf13/viper"
	"github.com/to404hanga/online_judge_engine/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	defaultDBLocation        = "Asia/Shanghai"
	defaultMaxOpenConns      = 100
	defaultMaxIdleConns      = 10
	defaultConnMaxLifetime   = time.Hour
	defaultConnMaxIdleTime   = 10 * time.Minute
)

// InitDB opens the MySQL connection shared by the master (reads submissions
// and problems) and the result collector (writes verdicts back).
func InitDB() *gorm.DB {
	var cfg config.DBConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal db config fail, err: %v", err)
	}

	db, err := gorm.Open(mysql.Open(dsn(&cfg)), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   cfg.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		log.Panicf("init db fail, err: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Panicf("get sql.DB fail, err: %v", err)
	}
	sqlDB.SetMaxOpenConns(orDefault(cfg.MaxOpenConns, defaultMaxOpenConns))
	sqlDB.SetMaxIdleConns(orDefault(cfg.MaxIdleConns, defaultMaxIdleConns))
	sqlDB.SetConnMaxLifetime(minutesOr(cfg.ConnMaxLifetime, defaultConnMaxLifetime))
	sqlDB.SetConnMaxIdleTime(minutesOr(cfg.ConnMaxIdleTime, defaultConnMaxIdleTime))
	return db
}

func dsn(cfg *config.DBConfig) string {
	loc := cfg.Location
	if loc == "" {
		loc = defaultDBLocation
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, url.QueryEscape(loc),
	)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// minutesOr 配置单位为分钟
func minutesOr(v int, def time.Duration) time.Duration {
	if v > 0 {
		return time.Duration(v) * time.Minute
	}
	return def
}
