// Package main - backend 子命令：图床类型列表、切换与可见性
package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

func backendCommand() *cli.Command {
	return &cli.Command{
		Name:    "backend",
		Aliases: []string{"b"},
		Usage:   "管理图床类型",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "列出图床类型",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "visible", Usage: "只列出可见的图床"},
				},
				Action: withSession(func(ctx *cli.Context, r *session) error {
					backends := r.store.ListBackendTypes()
					if ctx.Bool("visible") {
						backends = r.store.ListVisibleBackendTypes()
					}
					active := r.store.ActiveBackendType()

					table := tablewriter.NewWriter(os.Stdout)
					table.SetHeader([]string{"", "类型", "名称", "可见"})
					for _, b := range backends {
						mark := ""
						if b.Type == active {
							mark = "*"
						}
						visible := "是"
						if !b.Visible {
							visible = "否"
						}
						table.Append([]string{mark, b.Type, b.Name, visible})
					}
					table.Render()
					fmt.Printf("当前转换器: %s\n", r.store.ActiveTransformer())
					return nil
				}),
			},
			{
				Name:      "use",
				Usage:     "切换当前图床",
				ArgsUsage: "<type>",
				Action: withSession(func(ctx *cli.Context, r *session) error {
					backend := ctx.Args().First()
					if _, ok := r.picgo.Uploaders().Get(backend); !ok {
						return cli.Exit(fmt.Sprintf("❌ 未知的图床类型: %s", backend), 1)
					}
					if err := r.store.SetActiveBackendType(backend); err != nil {
						return cli.Exit(fmt.Sprintf("❌ 切换失败: %v", err), 1)
					}
					fmt.Println("✅ 当前图床: " + backend)
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "在图床列表中显示",
				ArgsUsage: "<type>",
				Action:    setVisible(true),
			},
			{
				Name:      "hide",
				Usage:     "在图床列表中隐藏",
				ArgsUsage: "<type>",
				Action:    setVisible(false),
			},
			{
				Name:      "transformer",
				Usage:     "查看或切换转换器",
				ArgsUsage: "[name]",
				Action: withSession(func(ctx *cli.Context, r *session) error {
					name := ctx.Args().First()
					if name == "" {
						fmt.Println(r.store.ActiveTransformer())
						return nil
					}
					if _, ok := r.picgo.Transformers().Get(name); !ok {
						return cli.Exit(fmt.Sprintf("❌ 未知的转换器: %s", name), 1)
					}
					if err := r.store.SetActiveTransformer(name); err != nil {
						return cli.Exit(fmt.Sprintf("❌ 切换失败: %v", err), 1)
					}
					fmt.Println("✅ 当前转换器: " + name)
					return nil
				}),
			},
		},
	}
}

func setVisible(visible bool) cli.ActionFunc {
	return withSession(func(ctx *cli.Context, r *session) error {
		backend := ctx.Args().First()
		if err := r.store.SetBackendVisible(backend, visible); err != nil {
			return cli.Exit(fmt.Sprintf("❌ 修改 %s 可见性失败: %v", backend, err), 1)
		}
		fmt.Println("✅ 已更新: " + backend)
		return nil
	})
}
