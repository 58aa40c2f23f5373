package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/to404hanga/online_judge_engine/ioc"
)

const defaultConfigPath = "./config/config.yaml"

func main() {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		log.Panicf("load location failed: %v", err)
	}
	time.Local = loc

	cfile := pflag.String("config", defaultConfigPath, "config file path")
	pflag.Parse()
	ioc.LoadConfig(*cfile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ioc.ServeMetrics(ctx, ioc.InitMetricsServer())

	// 构建判题 worker, 同时负责工作目录清理
	worker := BuildDependency()
	if err = worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Panicf("start judger worker failed: %v", err)
	}
}
