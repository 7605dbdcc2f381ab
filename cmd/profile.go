// Package main - profile 子命令：同一图床的多套配置
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Wsine/picgo-helper/core"
	"github.com/Wsine/picgo-helper/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var backendFlag = &cli.StringFlag{
	Name:    "type",
	Aliases: []string{"t"},
	Usage:   "图床类型，默认为当前图床",
}

// backendOf 取 --type，未指定时使用当前图床
func backendOf(ctx *cli.Context, r *session) string {
	if t := ctx.String("type"); t != "" {
		return t
	}
	return r.store.ActiveBackendType()
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:    "profile",
		Aliases: []string{"p"},
		Usage:   "管理图床的多套配置",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "列出配置",
				Flags: []cli.Flag{backendFlag},
				Action: withSession(func(ctx *cli.Context, r *session) error {
					backend := backendOf(ctx, r)
					cfg, err := r.store.Profiles(backend)
					if err != nil {
						return cli.Exit(fmt.Sprintf("❌ 读取配置失败: %v", err), 1)
					}

					table := tablewriter.NewWriter(os.Stdout)
					table.SetHeader([]string{"", "ID", "名称", "更新时间"})
					for _, p := range cfg.ConfigList {
						mark := ""
						if p.ID() == cfg.DefaultID {
							mark = "*"
						}
						table.Append([]string{mark, p.ID(), p.ConfigName(), formatMillis(p.UpdatedAt())})
					}
					fmt.Printf("图床: %s\n", backend)
					table.Render()
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "查看配置内容（密钥字段打码）",
				ArgsUsage: "[id]",
				Flags:     []cli.Flag{backendFlag},
				Action: withSession(func(ctx *cli.Context, r *session) error {
					p, err := findProfile(ctx, r)
					if err != nil {
						return err
					}
					masked := p.Clone()
					for k := range masked {
						if isSecretField(k) {
							masked[k] = utils.MaskSecret(masked.String(k))
						}
					}
					fmt.Println(utils.PrettyPrint(masked))
					return nil
				}),
			},
			{
				Name:      "save",
				Usage:     "新建或更新配置",
				ArgsUsage: "<key=value>...",
				Description: "指定 --id 且存在时合并更新该配置，否则新建并设为默认配置。\n\n" +
					"示例:\n" +
					"  picgo-helper profile save -t aliyun configName=work accessKeyId=xxx accessKeySecret=xxx bucket=img area=oss-cn-beijing\n" +
					"  picgo-helper profile save -t aliyun --id <id> path=blog/",
				Flags: []cli.Flag{
					backendFlag,
					&cli.StringFlag{Name: "id", Usage: "要更新的配置 ID"},
					&cli.BoolFlag{Name: "typed", Usage: "按 JSON 解析 value"},
				},
				Action: withSession(func(ctx *cli.Context, r *session) error {
					fields, err := utils.ParseAssignments(ctx.Args().Slice(), ctx.Bool("typed"))
					if err != nil {
						return cli.Exit(fmt.Sprintf("❌ %v", err), 1)
					}
					backend := backendOf(ctx, r)
					p, err := r.store.UpsertProfile(backend, ctx.String("id"), fields)
					if err != nil {
						return cli.Exit(fmt.Sprintf("❌ 保存失败: %v", err), 1)
					}
					fmt.Printf("✅ 已保存 %s 配置: %s (%s)\n", backend, p.ConfigName(), p.ID())
					return nil
				}),
			},
			{
				Name:      "select",
				Usage:     "设为默认配置",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{backendFlag},
				Action: withSession(func(ctx *cli.Context, r *session) error {
					backend := backendOf(ctx, r)
					p, ok := r.store.SelectProfile(backend, ctx.Args().First())
					if !ok {
						return cli.Exit(fmt.Sprintf("❌ %s 下没有配置 %s", backend, ctx.Args().First()), 1)
					}
					fmt.Printf("✅ %s 默认配置: %s\n", backend, p.ConfigName())
					return nil
				}),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "删除配置",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{backendFlag},
				Action: withSession(func(ctx *cli.Context, r *session) error {
					backend := backendOf(ctx, r)
					cfg, err := r.store.DeleteProfile(backend, ctx.Args().First())
					switch {
					case errors.Is(err, core.ErrLastProfile):
						return cli.Exit("❌ 至少需要保留一个配置", 1)
					case errors.Is(err, core.ErrProfileNotFound):
						return cli.Exit(fmt.Sprintf("❌ %s 下没有配置 %s", backend, ctx.Args().First()), 1)
					case err != nil:
						return cli.Exit(fmt.Sprintf("❌ 删除失败: %v", err), 1)
					}
					fmt.Printf("✅ 已删除，剩余 %d 个配置，默认配置: %s\n", len(cfg.ConfigList), cfg.DefaultID)
					return nil
				}),
			},
			{
				Name:      "test",
				Usage:     "测试配置的凭据能否访问存储桶",
				ArgsUsage: "[id]",
				Flags:     []cli.Flag{backendFlag},
				Action: withSession(func(ctx *cli.Context, r *session) error {
					p, err := findProfile(ctx, r)
					if err != nil {
						return err
					}
					res := r.checker().Check(ctx.Context, backendOf(ctx, r), p)
					if !res.OK {
						return cli.Exit(fmt.Sprintf("❌ %s 测试失败: %s", p.ConfigName(), res.Error), 1)
					}
					fmt.Printf("✅ %s 连接正常\n", res.Name)
					if res.BaseURL != "" {
						fmt.Printf("🔗 链接前缀: %s\n", res.BaseURL)
					}
					return nil
				}),
			},
		},
	}
}

// findProfile 取参数中的 id，未指定时取默认配置
func findProfile(ctx *cli.Context, r *session) (core.Profile, error) {
	backend := backendOf(ctx, r)
	cfg, err := r.store.Profiles(backend)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("❌ 读取配置失败: %v", err), 1)
	}
	id := ctx.Args().First()
	if id == "" {
		id = cfg.DefaultID
	}
	i := cfg.Find(id)
	if i < 0 {
		return nil, cli.Exit(fmt.Sprintf("❌ %s 下没有配置 %s", backend, id), 1)
	}
	return cfg.ConfigList[i], nil
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}

var secretFields = map[string]bool{
	"accessKeySecret": true,
	"secretKey":       true,
	"secretAccessKey": true,
	"password":        true,
	"token":           true,
}

func isSecretField(key string) bool {
	return secretFields[key]
}
