// judgectl judges a single source file locally, without the queue or the
// database. It prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/to404hanga/online_judge_engine/config"
	"github.com/to404hanga/online_judge_engine/executor"
	"github.com/to404hanga/online_judge_engine/executor/materializer"
	"github.com/to404hanga/online_judge_engine/ioc"
	"github.com/to404hanga/online_judge_engine/model"
)

const (
	exitAccepted = 0
	exitRejected = 1
	exitError    = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		cfile     = pflag.String("config", "", "config file path (optional)")
		lang      = pflag.StringP("lang", "l", "cpp", "submission language")
		codePath  = pflag.StringP("code", "c", "", "source file to judge")
		casesPath = pflag.String("cases", "", "yaml file with stubs and test cases")
		input     = pflag.String("input", "", "run once with this stdin instead of judging")
		strategy  = pflag.String("strategy", "", "sandbox strategy override: host or docker")
	)
	pflag.Parse()

	if *codePath == "" {
		fmt.Fprintln(os.Stderr, "judgectl: --code is required")
		pflag.Usage()
		return exitError
	}

	if *cfile != "" {
		viper.SetConfigFile(*cfile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "judgectl: read config file failed: %v\n", err)
			return exitError
		}
	}
	l := ioc.InitLogger()

	language, err := model.ParseLanguage(*lang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "judgectl: %v\n", err)
		return exitError
	}
	code, err := os.ReadFile(*codePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "judgectl: %v\n", err)
		return exitError
	}
	cf := &caseFile{TimeLimitMs: 1000}
	if *casesPath != "" {
		if cf, err = loadCaseFile(*casesPath); err != nil {
			fmt.Fprintf(os.Stderr, "judgectl: %v\n", err)
			return exitError
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := ioc.InitJudgeConfig()
	if *strategy != "" {
		cfg.Strategy = config.Strategy(*strategy)
	}
	manager := ioc.InitWorkspaceManager(cfg)
	judger := ioc.InitJudger(l, cfg, manager, ioc.InitSweeper(l, cfg, manager))
	defer judger.Close(context.Background())

	timeLimit := time.Duration(cf.TimeLimitMs) * time.Millisecond
	var out any
	status := exitAccepted
	if pflag.CommandLine.Changed("input") {
		outcome, err := judger.Run(ctx, &executor.RunTask{
			Language:  language,
			Code:      string(code),
			Stubs:     cf.Stubs,
			Input:     *input,
			TimeLimit: timeLimit,
		})
		if err != nil {
			return reportError(err)
		}
		out = outcome
	} else {
		res, err := judger.Judge(ctx, &executor.JudgeTask{
			Language:  language,
			Code:      string(code),
			Stubs:     cf.Stubs,
			TestCases: cf.Cases,
			TimeLimit: timeLimit,
		})
		if err != nil {
			return reportError(err)
		}
		if !res.Verdict.Accepted() {
			status = exitRejected
		}
		out = res
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "judgectl: %v\n", err)
		return exitError
	}
	return status
}

func reportError(err error) int {
	kind := "infrastructure"
	switch {
	case errors.Is(err, executor.ErrInvalidTask):
		kind = "invalid task"
	case errors.As(err, new(*materializer.SignatureParseError)):
		kind = "signature"
	}
	fmt.Fprintf(os.Stderr, "judgectl: %s error: %v\n", kind, err)
	return exitError
}
