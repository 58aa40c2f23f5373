//go:build wireinject

package main

import (
	"github.com/google/wire"
	iocself "github.com/to404hanga/online_judge_engine/cmd/master/ioc"
	"github.com/to404hanga/online_judge_engine/cmd/master/service"
	"github.com/to404hanga/online_judge_engine/ioc"
)

func BuildDependency() *service.SubmissionService {
	wire.Build(
		ioc.InitLogger,
		ioc.InitKafka,
		ioc.InitRedis,
		ioc.InitDB,
		iocself.InitJudgerMasterConsumerGroup,
		iocself.InitLRUCache,
		service.NewSubmissionService,
	)
	return nil
}
