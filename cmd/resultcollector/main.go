package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/to404hanga/online_judge_engine/ioc"
)

const defaultConfigPath = "./config/config.yaml"

func main() {
	cfile := pflag.String("config", defaultConfigPath, "config file path")
	pflag.Parse()
	ioc.LoadConfig(*cfile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ioc.ServeMetrics(ctx, ioc.InitMetricsServer())

	// 构建结果收集服务
	collector := BuildDependency()
	if err := collector.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Panicf("start result collector failed: %v", err)
	}
}
