package ioc

import (
	"log"
	"time"

	"github.com/spf13/viper"
	"github.com/to404hanga/online_judge_engine/config"
	"github.com/to404hanga/online_judge_engine/executor"
	"github.com/to404hanga/online_judge_engine/executor/sweeper"
	"github.com/to404hanga/online_judge_engine/executor/workspace"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

func InitJudgeConfig() config.JudgeConfig {
	var cfg config.JudgeConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal judge config fail, err: %v", err)
	}
	return cfg
}

func InitWorkspaceManager(cfg config.JudgeConfig) *workspace.Manager {
	m, err := workspace.NewManager(cfg.WorkspaceRoot)
	if err != nil {
		log.Panicf("init workspace manager fail, err: %v", err)
	}
	return m
}

func InitSweeper(l loggerv2.Logger, cfg config.JudgeConfig, m *workspace.Manager) *sweeper.Sweeper {
	return sweeper.New(l, m,
		time.Duration(cfg.RetentionHours)*time.Hour,
		time.Duration(cfg.SweepIntervalMinutes)*time.Minute,
	)
}

// InitJudger is the only place the sandbox strategy is chosen.
func InitJudger(l loggerv2.Logger, cfg config.JudgeConfig, m *workspace.Manager, s *sweeper.Sweeper) executor.Judger {
	e, err := executor.NewExecutor(l, cfg, m)
	if err != nil {
		log.Panicf("init executor fail, strategy: %s, err: %v", cfg.Strategy, err)
	}
	return executor.NewJudger(l, e, m, s)
}
