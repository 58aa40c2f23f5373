//go:build wireinject

package main

import (
	"github.com/google/wire"
	iocself "github.com/to404hanga/online_judge_engine/cmd/resultcollector/ioc"
	"github.com/to404hanga/online_judge_engine/cmd/resultcollector/service"
	"github.com/to404hanga/online_judge_engine/ioc"
)

func BuildDependency() *service.ResultCollectorService {
	wire.Build(
		ioc.InitLogger,
		ioc.InitDB,
		ioc.InitKafka,
		iocself.InitResultCollectorConsumerGroup,
		iocself.InitResultCollectorService,
	)
	return nil
}
