// Package main - 运行时装配：配置、日志、PicGo 上下文、配置存储
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Wsine/picgo-helper/core"
	"github.com/Wsine/picgo-helper/imgbed"
	"github.com/Wsine/picgo-helper/picgo"
	"github.com/Wsine/picgo-helper/utils"
	"github.com/urfave/cli/v2"
)

// session 一次命令执行所需的全部组件
type session struct {
	config    *core.Config
	logger    *slog.Logger
	cli       *picgo.CLI
	picgo     *picgo.CLIContext
	store     *core.Store
	plugins   *core.PluginManager
	persister *core.FilePersister
}

// openSession 按 CLI 参数 > 环境变量 > 默认值 装配运行时
// 配置文档或上下文缺失属于前置条件错误，直接终止
func openSession(ctx *cli.Context) (*session, error) {
	if err := core.LoadEnvFile(ctx.String("config")); err != nil {
		return nil, fmt.Errorf("加载配置文件失败: %w", err)
	}
	config, err := core.LoadConfig(core.Overrides{
		DataFile: ctx.String("data-file"),
		PicGoBin: ctx.String("picgo-bin"),
		Addr:     ctx.String("addr"),
		LogLevel: ctx.String("log-level"),
	})
	if err != nil {
		return nil, err
	}
	logger := core.NewLogger(os.Stderr, config.Log)
	slog.SetDefault(logger)

	bin := picgo.NewCLI(config.PicGo.Bin)
	picgoCtx, err := picgo.NewCLIContext(bin, config.PicGo.BaseDir)
	if err != nil {
		return nil, err
	}

	doc, err := core.LoadDocument(config.Store.DataFile)
	if err != nil {
		return nil, err
	}
	store, err := core.NewStore(picgoCtx, doc, nil)
	utils.CheckErr(err)

	logger.Debug("配置已加载", "dataFile", config.Store.DataFile, "baseDir", config.PicGo.BaseDir)
	return &session{
		config:    config,
		logger:    logger,
		cli:       bin,
		picgo:     picgoCtx,
		store:     store,
		plugins:   core.NewPluginManager(store, logger),
		persister: core.NewFilePersister(config.Store.DataFile, store, logger),
	}, nil
}

// checker 创建带限流的凭据检查器
func (r *session) checker() *imgbed.Checker {
	return imgbed.NewChecker(core.NewProbeRateLimiter(r.config.Probe.RatePerSecond), r.logger)
}

// Close 把未写入的修改落盘
func (r *session) Close() error {
	return r.persister.Close()
}

// withSession 为子命令打开会话并在结束后关闭
func withSession(action func(ctx *cli.Context, r *session) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		r, err := openSession(ctx)
		if err != nil {
			return cli.Exit(fmt.Sprintf("❌ %v", err), 1)
		}
		actionErr := action(ctx, r)
		if err := r.Close(); err != nil {
			r.logger.Error("保存配置失败", "error", err)
			if actionErr == nil {
				actionErr = cli.Exit(fmt.Sprintf("❌ 保存配置失败: %v", err), 1)
			}
		}
		return actionErr
	}
}
