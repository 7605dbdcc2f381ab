// Package main - upload 子命令：调用 picgo CLI 上传图片
package main

import (
	"fmt"
	"path/filepath"

	"github.com/Wsine/picgo-helper/picgo"
	"github.com/urfave/cli/v2"
)

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Aliases:   []string{"u"},
		Usage:     "使用当前图床与默认配置上传图片",
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-cache", Usage: "不使用上传缓存"},
		},
		Action: withSession(func(ctx *cli.Context, r *session) error {
			if ctx.NArg() == 0 {
				return cli.Exit("错误: 请指定要上传的图片", 1)
			}
			if !r.cli.IsAvailable() {
				return cli.Exit(fmt.Sprintf("❌ 未找到 %s，请先安装: npm install picgo -g", r.cli.Bin()), 1)
			}
			if version, err := r.cli.Version(ctx.Context); err == nil {
				r.logger.Debug("picgo 版本", "version", version)
			}

			// 上传前确保 pictureBed.<type> 是默认配置
			backend := r.store.ActiveBackendType()
			if _, err := r.store.Profiles(backend); err != nil {
				return cli.Exit(fmt.Sprintf("❌ 读取 %s 配置失败: %v", backend, err), 1)
			}
			if err := r.persister.Flush(); err != nil {
				return cli.Exit(fmt.Sprintf("❌ 保存配置失败: %v", err), 1)
			}

			var cache *picgo.Cache
			if !ctx.Bool("no-cache") {
				cache = picgo.NewCache(filepath.Join(r.config.PicGo.BaseDir, picgo.CacheFileName))
			}

			fmt.Printf("📤 上传到 %s: %d 张图片\n", backend, ctx.NArg())
			failed := 0
			for _, res := range r.cli.BatchUpload(ctx.Context, ctx.Args().Slice(), cache) {
				switch {
				case res.Error != nil:
					failed++
					fmt.Printf("❌ %s: %v\n", res.LocalPath, res.Error)
				case res.Cached:
					fmt.Printf("♻️  %s -> %s\n", res.LocalPath, res.URL)
				default:
					fmt.Printf("✅ %s -> %s\n", res.LocalPath, res.URL)
				}
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d 张图片上传失败", failed), 1)
			}
			return nil
		}),
	}
}
