// Package main - plugin 子命令：安装、卸载、更新、启用与禁用
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Wsine/picgo-helper/core"
	"github.com/Wsine/picgo-helper/picgo"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

func pluginCommand() *cli.Command {
	return &cli.Command{
		Name:  "plugin",
		Usage: "管理 PicGo 插件",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "列出已安装插件",
				Action: withSession(func(ctx *cli.Context, r *session) error {
					names, err := picgo.InstalledPlugins(r.config.PicGo.BaseDir)
					if err != nil {
						return cli.Exit(fmt.Sprintf("❌ %v", err), 1)
					}
					table := tablewriter.NewWriter(os.Stdout)
					table.SetHeader([]string{"插件", "启用", "上传器", "转换器"})
					for _, name := range names {
						uploaders, transformers := r.plugins.Provided(name)
						enabled := "是"
						if !r.store.PluginEnabled(name) {
							enabled = "否"
						}
						table.Append([]string{name, enabled, strings.Join(uploaders, ","), strings.Join(transformers, ",")})
					}
					table.Render()
					return nil
				}),
			},
			{
				Name:      "install",
				Usage:     "安装插件",
				ArgsUsage: "<name>...",
				Action:    pluginAction("安装", (*core.PluginManager).Install),
			},
			{
				Name:      "uninstall",
				Usage:     "卸载插件",
				ArgsUsage: "<name>...",
				Action:    pluginAction("卸载", (*core.PluginManager).Uninstall),
			},
			{
				Name:      "update",
				Usage:     "更新插件",
				ArgsUsage: "<name>...",
				Action:    pluginAction("更新", (*core.PluginManager).Update),
			},
			{
				Name:      "enable",
				Usage:     "启用插件",
				ArgsUsage: "<name>",
				Action:    toggleAction(true),
			},
			{
				Name:      "disable",
				Usage:     "禁用插件，使用中的上传器/转换器会回退到默认值",
				ArgsUsage: "<name>",
				Action:    toggleAction(false),
			},
		},
	}
}

type pluginOp func(m *core.PluginManager, ctx context.Context, names []string) core.PluginResult

func pluginAction(label string, op pluginOp) cli.ActionFunc {
	return withSession(func(ctx *cli.Context, r *session) error {
		if ctx.NArg() == 0 {
			return cli.Exit("错误: 请指定插件名", 1)
		}
		names := make([]string, 0, ctx.NArg())
		for _, name := range ctx.Args().Slice() {
			names = append(names, picgo.FullPluginName(name))
		}

		fmt.Printf("⏳ 正在%s: %s\n", label, strings.Join(names, " "))
		res := op(r.plugins, ctx.Context, names)
		if !res.Success {
			return cli.Exit(fmt.Sprintf("❌ %s失败: %s", label, res.ErrMsg), 1)
		}
		fmt.Printf("✅ %s完成: %s\n", label, strings.Join(res.Body, " "))
		return nil
	})
}

func toggleAction(enabled bool) cli.ActionFunc {
	return withSession(func(ctx *cli.Context, r *session) error {
		name := ctx.Args().First()
		if name == "" {
			return cli.Exit("错误: 请指定插件名", 1)
		}
		name = picgo.FullPluginName(name)
		if err := r.plugins.Toggle(name, enabled); err != nil {
			return cli.Exit(fmt.Sprintf("❌ %v", err), 1)
		}
		state := "启用"
		if !enabled {
			state = "禁用"
		}
		fmt.Printf("✅ 已%s %s\n", state, name)
		return nil
	})
}
