package ioc

import (
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/to404hanga/online_judge_engine/cmd/worker/config"
	"github.com/to404hanga/online_judge_engine/cmd/worker/service"
	"github.com/to404hanga/online_judge_engine/event"
	"github.com/to404hanga/online_judge_engine/executor"
	"github.com/to404hanga/online_judge_engine/executor/sweeper"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

func InitJudgerWorkerService(l loggerv2.Logger, rdb redis.Cmdable, judger executor.Judger, sw *sweeper.Sweeper, producer event.Producer) *service.JudgeService {
	var cfg config.JudgerWorkerConfig
	err := viper.UnmarshalKey(cfg.Key(), &cfg)
	if err != nil {
		log.Panicf("unmarshal judger worker config failed, err: %v", err)
	}

	return service.NewJudgeService(l, rdb, judger, sw, producer, cfg.XAutoClaimTimeoutMinutes, cfg.ReadBlockSeconds, cfg.ResultTopic)
}
