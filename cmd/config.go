// Package main - config 子命令：按点分路径读写配置文档
package main

import (
	"fmt"

	"github.com/Wsine/picgo-helper/core"
	"github.com/Wsine/picgo-helper/utils"
	"github.com/urfave/cli/v2"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "按点分路径读写配置",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "读取配置，不指定路径时输出整个文档",
				ArgsUsage: "[path]",
				Action: withSession(func(ctx *cli.Context, r *session) error {
					path := ctx.Args().First()
					v := r.store.Get(path, nil)
					if v == nil && path != "" {
						return cli.Exit(fmt.Sprintf("❌ 配置项不存在: %s", path), 1)
					}
					fmt.Println(utils.PrettyPrint(v))
					return nil
				}),
			},
			{
				Name:      "set",
				Usage:     "写入配置，可一次写入多项，按参数顺序生效",
				ArgsUsage: "<path=value>...",
				Description: "value 按 JSON 解析，解析失败时作为字符串。\n\n" +
					"示例:\n" +
					"  picgo-helper config set picgoPlugins.autoRename=true\n" +
					"  picgo-helper config set 'settings.shortKey={\"upload\":\"CmdOrCtrl+Shift+P\"}'",
				Action: withSession(func(ctx *cli.Context, r *session) error {
					if ctx.NArg() == 0 {
						return cli.Exit("错误: 请指定 path=value", 1)
					}
					// 逐个解析以保留参数顺序
					patch := make(core.Patch, 0, ctx.NArg())
					for _, arg := range ctx.Args().Slice() {
						kv, err := utils.ParseAssignments([]string{arg}, true)
						if err != nil {
							return cli.Exit(fmt.Sprintf("❌ %v", err), 1)
						}
						for path, value := range kv {
							patch = append(patch, core.Entry{Path: path, Value: value})
						}
					}
					if err := r.store.Save(patch); err != nil {
						return cli.Exit(fmt.Sprintf("❌ 保存失败: %v", err), 1)
					}
					fmt.Printf("✅ 已保存 %d 项配置\n", len(patch))
					return nil
				}),
			},
			{
				Name:      "unset",
				Usage:     "删除配置项",
				ArgsUsage: "<path>",
				Action: withSession(func(ctx *cli.Context, r *session) error {
					path := ctx.Args().First()
					if path == "" {
						return cli.Exit("错误: 请指定 path", 1)
					}
					if !r.store.Unset(path) {
						return cli.Exit(fmt.Sprintf("❌ 配置项不存在: %s", path), 1)
					}
					fmt.Println("✅ 已删除: " + path)
					return nil
				}),
			},
		},
	}
}
