// Package main 为 picgo-helper 提供命令行接口
// picgo-helper 管理 PicGo 的图床配置：同一图床的多套配置、图床切换与可见性、插件启用状态
package main

import (
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

// version 是应用程序版本，通常在构建时设置
var version = "v0.1.0"

func main() {
	app := &cli.App{
		Name:    "picgo-helper",
		Version: strings.TrimSpace(version),
		Usage:   "管理 PicGo 图床配置与插件",
		Description: "多配置图床管理工具，配置文档与 PicGo 插件共用。\n\n" +
			"使用示例:\n" +
			"  picgo-helper backend list\n" +
			"  picgo-helper profile save -t tcyun configName=blog secretId=... secretKey=... bucket=img-125000 area=ap-guangzhou\n" +
			"  picgo-helper profile select -t tcyun <id>\n" +
			"  picgo-helper upload ./a.png ./b.png\n" +
			"  picgo-helper serve",
		// 全局标志，适用于所有子命令
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "指定配置文件路径",
				Value:   ".env",
			},
			&cli.StringFlag{
				Name:  "data-file",
				Usage: "配置文档 JSON 文件路径，覆盖 PICGO_HELPER_DATA_FILE",
			},
			&cli.StringFlag{
				Name:  "picgo-bin",
				Usage: "picgo 可执行文件，覆盖 PICGO_BIN",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "serve 监听地址，覆盖 PICGO_HELPER_ADDR",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别: debug / info / warn / error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "init",
				Aliases: []string{"i"},
				Usage:   "创建环境变量配置文件",
				Description: "在当前目录创建 .env 示例文件，包含所有配置项说明。\n\n" +
					"示例:\n" +
					"  picgo-helper init\n" +
					"  picgo-helper init --force  # 强制覆盖已存在的文件",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "强制覆盖已存在的配置文件",
					},
				},
				Action: handleInitCommand,
			},
			configCommand(),
			backendCommand(),
			profileCommand(),
			pluginCommand(),
			uploadCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
