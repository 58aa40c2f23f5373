package ioc

import (
	"log"

	"github.com/spf13/viper"
	"github.com/to404hanga/online_judge_engine/config"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

// InitLogger builds the zap backed context logger. Without a "log" section
// the global logger is returned so that judgectl works with no config file.
func InitLogger() loggerv2.Logger {
	if !viper.IsSet(config.LoggerConfig{}.Key()) {
		return loggerv2.GetGlobalLogger()
	}

	var cfg config.LoggerConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal logger config fail, err: %v", err)
	}
	l, err := loggerv2.NewZapContextLoggerWithConfig(loggerv2.LoggerConfig{
		Output: loggerv2.OutputConfig{
			Type:           cfg.Type,
			FilePath:       cfg.LogFilePath,
			AutoCreateFile: cfg.AutoCreateFile,
		},
		Development: cfg.Development,
	})
	if err != nil {
		log.Panicf("init logger fail, err: %v", err)
	}
	return l
}
