// Package main - serve 子命令：启动本地 HTTP 接口
package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/Wsine/picgo-helper/server"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "启动本地 HTTP 接口（REST + WebSocket 事件推送）",
		Action: withSession(func(ctx *cli.Context, r *session) error {
			addr := r.config.Server.Addr
			if r.config.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := server.NewServer(server.Options{
				Store:       r.store,
				Plugins:     r.plugins,
				Checker:     r.checker(),
				CORSOrigins: r.config.Server.CORSOrigins,
				Logger:      r.logger,
			})

			runCtx, stop := signal.NotifyContext(ctx.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Printf("🚀 http://%s  (Ctrl+C 退出)\n", addr)
			if err := srv.Run(runCtx, addr); err != nil {
				return cli.Exit(fmt.Sprintf("❌ 无法启动 HTTP 服务: %v", err), 1)
			}
			return nil
		}),
	}
}
