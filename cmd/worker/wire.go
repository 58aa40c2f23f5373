//go:build wireinject

package main

import (
	"github.com/google/wire"
	iocself "github.com/to404hanga/online_judge_engine/cmd/worker/ioc"
	"github.com/to404hanga/online_judge_engine/cmd/worker/service"
	"github.com/to404hanga/online_judge_engine/event"
	"github.com/to404hanga/online_judge_engine/ioc"
)

func BuildDependency() *service.JudgeService {
	wire.Build(
		ioc.InitLogger,
		ioc.InitRedis,
		ioc.InitKafka,
		ioc.InitSyncProducer,
		event.NewSaramaProducer,
		ioc.InitJudgeConfig,
		ioc.InitWorkspaceManager,
		ioc.InitSweeper,
		ioc.InitJudger,
		iocself.InitJudgerWorkerService,
	)
	return nil
}
