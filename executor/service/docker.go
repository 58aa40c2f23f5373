package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
	ojconfig "github.com/to404hanga/online_judge_engine/config"
	"github.com/to404hanga/online_judge_engine/executor/config"
	"github.com/to404hanga/online_judge_engine/executor/materializer"
	"github.com/to404hanga/online_judge_engine/executor/workspace"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

const (
	containerWorkDir = "/app"
	// timeout(1) exit status when the time limit expired
	timeoutExitCode = 124
	// timeout(1) exit status when the -k escalation had to SIGKILL
	timeoutKillExitCode = 137
)

// DockerExecutor runs every compile and run step in a fresh, throwaway
// container that bind-mounts the job workspace at /app.
type DockerExecutor struct {
	client         *client.Client
	log            loggerv2.Logger
	compileTimeout time.Duration // 不建议低于 10s, 经测试编译 go 代码需要将近 9s
	memoryLimit    int64
	nanoCPUs       int64
	pidsLimit      int64
	grace          time.Duration
	workspaceRoot  string
	hostBindRoot   string

	imagesMu sync.Mutex
	images   map[string]bool
}

var _ Executor = (*DockerExecutor)(nil)

func NewDockerExecutor(log loggerv2.Logger, cfg ojconfig.JudgeConfig, workspaceRoot string) (*DockerExecutor, error) {
	c, err := client.New(client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client failed: %w", err)
	}
	if _, err = c.Ping(context.Background(), client.PingOptions{}); err != nil {
		return nil, fmt.Errorf("ping docker daemon failed: %w", err)
	}

	e := &DockerExecutor{
		client:         c,
		log:            log,
		compileTimeout: time.Duration(cfg.CompileTimeoutSeconds) * time.Second,
		memoryLimit:    int64(cfg.MemoryLimitMB) * 1024 * 1024,
		nanoCPUs:       cfg.NanoCPUs,
		pidsLimit:      cfg.PidsLimit,
		grace:          time.Duration(cfg.GraceSeconds) * time.Second,
		workspaceRoot:  workspaceRoot,
		hostBindRoot:   cfg.HostBindRoot,
		images:         make(map[string]bool),
	}
	if e.compileTimeout <= 0 {
		e.compileTimeout = 10 * time.Second
	}
	if e.memoryLimit <= 0 {
		e.memoryLimit = 256 * 1024 * 1024
	}
	if e.nanoCPUs <= 0 {
		e.nanoCPUs = 500000000 // 半个核
	}
	if e.pidsLimit <= 0 {
		e.pidsLimit = 64
	}
	if e.grace <= 0 {
		e.grace = time.Second
	}
	return e, nil
}

func (e *DockerExecutor) Compile(ctx context.Context, ws *workspace.Workspace, prog *materializer.Program) (*CompileResult, error) {
	cfg := prog.Config()
	if !cfg.Compiled() {
		return &CompileResult{Success: true, OutputPath: ws.File(prog.FileName)}, nil
	}

	containerID, err := e.startContainer(ctx, cfg.ImageName, ws)
	if err != nil {
		return nil, err
	}
	defer e.removeContainer(ctx, containerID)

	src, bin := containerPath(prog.FileName), containerPath(workspace.BinaryFileName)
	args := config.Expand(cfg.BuildCommand, containerWorkDir, src, bin, prog.ClassName)

	compileCtx, cancel := context.WithTimeout(ctx, e.compileTimeout)
	defer cancel()

	startAt := time.Now()
	_, stderr, exitCode, err := e.execWithAttach(compileCtx, containerID, args)
	elapsed := time.Since(startAt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("compile interrupted: %w", ctx.Err())
		}
		if compileCtx.Err() == context.DeadlineExceeded {
			return &CompileResult{
				Success:      false,
				ErrorMessage: fmt.Sprintf("compilation timed out after %s", e.compileTimeout),
				WallTime:     elapsed,
			}, nil
		}
		return nil, fmt.Errorf("exec compiler failed: %w", err)
	}
	if exitCode != 0 || stderr != "" {
		return &CompileResult{Success: false, ErrorMessage: stderr, WallTime: elapsed}, nil
	}

	out := ws.File(workspace.BinaryFileName)
	if cfg.ClassDerived {
		out = ws.Path
	}
	return &CompileResult{Success: true, OutputPath: out, WallTime: elapsed}, nil
}

func (e *DockerExecutor) Execute(ctx context.Context, ws *workspace.Workspace, prog *materializer.Program, input string, timeLimit time.Duration) (*Outcome, error) {
	if err := ws.WriteFile(workspace.InputFileName, []byte(input)); err != nil {
		return nil, err
	}
	// truncate any output left by a previous case
	if err := ws.WriteFile(workspace.OutputFileName, nil); err != nil {
		return nil, err
	}

	cfg := prog.Config()
	containerID, err := e.startContainer(ctx, cfg.ImageName, ws)
	if err != nil {
		return nil, err
	}
	defer e.removeContainer(ctx, containerID)

	run := strings.Join(config.Expand(cfg.RunCommand, containerWorkDir,
		containerPath(prog.FileName), containerPath(workspace.BinaryFileName), prog.ClassName), " ")
	cmd := []string{
		"timeout", "-k", "1", strconv.FormatFloat(timeLimit.Seconds(), 'f', 3, 64),
		"sh", "-c", fmt.Sprintf("%s < %s > %s", run, containerPath(workspace.InputFileName), containerPath(workspace.OutputFileName)),
	}

	// 外层超时在时限基础上留出余量, 防止 timeout(1) 自身失效
	runCtx, cancel := context.WithTimeout(ctx, timeLimit+e.grace)
	defer cancel()

	monitorCtx, stopMonitor := context.WithCancel(runCtx)
	memoryChan := make(chan int64, 1)
	go e.monitorMemoryUsage(monitorCtx, containerID, memoryChan)

	startAt := time.Now()
	_, stderr, exitCode, err := e.execWithAttach(runCtx, containerID, cmd)
	elapsed := time.Since(startAt)
	stopMonitor()
	maxMemory := <-memoryChan

	if ctx.Err() != nil {
		return nil, fmt.Errorf("run interrupted: %w", ctx.Err())
	}

	outcome := &Outcome{
		Stage:        StageRun,
		Stderr:       stderr,
		ExitCode:     exitCode,
		WallTime:     elapsed,
		MemoryUsedKB: maxMemory / 1024,
	}
	switch {
	case err != nil && runCtx.Err() == context.DeadlineExceeded:
		outcome.ExitStatus = ExitKilled
		outcome.ExitCode = -1
	case err != nil:
		return nil, fmt.Errorf("exec program failed: %w", err)
	case exitCode == timeoutExitCode,
		exitCode == timeoutKillExitCode && elapsed >= timeLimit:
		outcome.ExitStatus = ExitKilled
	case exitCode != 0:
		outcome.ExitStatus = ExitNonzero
	default:
		outcome.ExitStatus = ExitOK
	}

	outcome.Stdout, err = readOutput(ws.File(workspace.OutputFileName))
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// Close has nothing to release; containers never outlive a single step.
func (e *DockerExecutor) Close(ctx context.Context) error {
	return nil
}

func (e *DockerExecutor) ensureImage(ctx context.Context, image string) error {
	e.imagesMu.Lock()
	defer e.imagesMu.Unlock()
	if e.images[image] {
		return nil
	}

	// 首先检查本地是否已存在该镜像
	filters := client.Filters{}
	filters.Add("reference", image)
	images, err := e.client.ImageList(ctx, client.ImageListOptions{
		Filters: filters,
	})
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	if len(images.Items) == 0 {
		e.log.InfoContext(ctx, "Local image not found, pulling from registry", logger.String("image", image))
		reader, err := e.client.ImagePull(ctx, image, client.ImagePullOptions{})
		if err != nil {
			return fmt.Errorf("failed to pull image: %w", err)
		}
		defer reader.Close()
		if _, err = io.Copy(io.Discard, reader); err != nil {
			return fmt.Errorf("failed to pull image: %w", err)
		}
	}
	e.images[image] = true
	return nil
}

func (e *DockerExecutor) startContainer(ctx context.Context, image string, ws *workspace.Workspace) (string, error) {
	if err := e.ensureImage(ctx, image); err != nil {
		return "", fmt.Errorf("ensure image failed: %w", err)
	}
	hostDir, err := e.hostPath(ws.Path)
	if err != nil {
		return "", err
	}

	pids := e.pidsLimit
	cfg := &container.Config{
		Image:           image,
		Cmd:             []string{"sleep", "infinity"},
		WorkingDir:      containerWorkDir,
		NetworkDisabled: true,
	}
	host := &container.HostConfig{
		Binds:       []string{hostDir + ":" + containerWorkDir + ":rw"},
		NetworkMode: "none",
		CapDrop:     []string{"ALL"},
		SecurityOpt: []string{"no-new-privileges"},
		Resources: container.Resources{
			Memory:     e.memoryLimit,
			MemorySwap: e.memoryLimit, // 与 Memory 相同即禁用 swap
			NanoCPUs:   e.nanoCPUs,
			PidsLimit:  &pids,
		},
	}
	resp, err := e.client.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     cfg,
		HostConfig: host,
	})
	if err != nil {
		return "", fmt.Errorf("create container failed: %w", err)
	}
	if _, err := e.client.ContainerStart(ctx, resp.ID, client.ContainerStartOptions{}); err != nil {
		e.removeContainer(ctx, resp.ID)
		return "", fmt.Errorf("start container failed: %w", err)
	}
	return resp.ID, nil
}

// removeContainer force-removes the container even when ctx is already
// cancelled.
func (e *DockerExecutor) removeContainer(ctx context.Context, containerID string) {
	rmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if _, err := e.client.ContainerRemove(rmCtx, containerID, client.ContainerRemoveOptions{Force: true}); err != nil {
		e.log.ErrorContext(ctx, "remove container failed", logger.String("containerID", containerID), logger.Error(err))
	}
}

// hostPath translates a workspace path into the path the docker daemon
// sees, for workers that themselves run in a container.
func (e *DockerExecutor) hostPath(path string) (string, error) {
	if e.hostBindRoot == "" {
		return path, nil
	}
	rel, err := filepath.Rel(e.workspaceRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("workspace %s is not under %s", path, e.workspaceRoot)
	}
	return filepath.Join(e.hostBindRoot, rel), nil
}

func containerPath(name string) string {
	return containerWorkDir + "/" + name
}

// monitorMemoryUsage 监控容器内存使用量
func (e *DockerExecutor) monitorMemoryUsage(ctx context.Context, containerID string, memoryChan chan<- int64) {
	defer close(memoryChan)
	var maxMemory int64
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			memoryChan <- maxMemory
			return
		case <-ticker.C:
			stats, err := e.client.ContainerStats(ctx, containerID, client.ContainerStatsOptions{})
			if err != nil {
				if ctx.Err() == nil {
					e.log.WarnContext(ctx, "get container stats failed", logger.Error(err))
				}
				continue
			}
			var statsData container.StatsResponse
			err = json.NewDecoder(stats.Body).Decode(&statsData)
			stats.Body.Close()
			if err != nil {
				continue
			}
			// 获取当前RSS内存使用量
			if rss := int64(statsData.MemoryStats.Stats["rss"]); rss > maxMemory {
				maxMemory = rss
			}
		}
	}
}

func (e *DockerExecutor) execWithAttach(ctx context.Context, containerID string, cmd []string) (string, string, int, error) {
	created, err := e.client.ExecCreate(ctx, containerID, client.ExecCreateOptions{
		Cmd:          cmd,
		WorkingDir:   containerWorkDir,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", "", -1, err
	}
	attach, err := e.client.ExecAttach(ctx, created.ID, client.ExecAttachOptions{})
	if err != nil {
		return "", "", -1, err
	}
	defer attach.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	done := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, attach.Reader)
		done <- err
	}()

	select {
	case err = <-done:
		if err != nil && err != io.EOF {
			return "", "", -1, err
		}
	case <-ctx.Done():
		// buffers are still being written by StdCopy
		return "", "", -1, ctx.Err()
	}

	inspect, err := e.client.ExecInspect(ctx, created.ID, client.ExecInspectOptions{})
	if err != nil {
		return stdoutBuf.String(), stderrBuf.String(), -1, err
	}
	return stdoutBuf.String(), stderrBuf.String(), inspect.ExitCode, nil
}
