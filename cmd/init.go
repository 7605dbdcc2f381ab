// Package main - 初始化配置文件功能
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// envTemplate 环境变量配置文件模板
const envTemplate = `# ====================================
# picgo-helper - 环境变量配置
# ====================================
# 优先级: 命令行参数 > 环境变量 > 本文件 > 默认值

# ----------------------------------
# PicGo 配置（可选）
# ----------------------------------
# PicGo 数据目录，插件安装在这里
# 默认: ~/.picgo
# PICGO_HOME=~/.picgo

# picgo 可执行文件
# 安装方式: npm install picgo -g
# 默认: picgo
# PICGO_BIN=picgo

# ----------------------------------
# 配置文档（可选）
# ----------------------------------
# 图床配置、多配置列表、插件启用状态都保存在这个 JSON 文件中
# 默认: $PICGO_HOME/picgo-helper.json
# PICGO_HELPER_DATA_FILE=

# ----------------------------------
# 本地 HTTP 接口（可选）
# ----------------------------------
# serve 命令的监听地址
# 默认: 127.0.0.1:36677
# PICGO_HELPER_ADDR=127.0.0.1:36677

# 允许跨域访问的来源，逗号分隔；为空时不启用 CORS
# PICGO_HELPER_CORS_ORIGINS=http://localhost:5173

# ----------------------------------
# 凭据测试（可选）
# ----------------------------------
# profile test 每秒最多请求次数
# 默认: 2
# PICGO_HELPER_PROBE_RATE=2

# ----------------------------------
# 日志（可选）
# ----------------------------------
# 级别: debug / info / warn / error
# PICGO_HELPER_LOG_LEVEL=info

# 格式: text / json
# PICGO_HELPER_LOG_FORMAT=text
`

// handleInitCommand 处理 init 命令
func handleInitCommand(ctx *cli.Context) error {
	force := ctx.Bool("force")
	filename := ctx.String("config")
	if filename == "" {
		filename = ".env"
	}

	// 检查文件是否已存在
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return cli.Exit(fmt.Sprintf("❌ 文件 %s 已存在\n"+
				"使用 --force 参数强制覆盖，或手动删除后重试", filename), 1)
		}
	}

	if err := os.WriteFile(filename, []byte(envTemplate), 0644); err != nil {
		return cli.Exit(fmt.Sprintf("❌ 创建配置文件失败: %v", err), 1)
	}

	fmt.Println("✅ 配置文件已创建: " + filename)
	fmt.Println()
	fmt.Println("📝 后续步骤:")
	fmt.Println("  1. 按需修改配置文件（所有配置项都有默认值）")
	fmt.Println("  2. 添加图床配置: picgo-helper profile save -t aliyun configName=work accessKeyId=... ")
	fmt.Println("  3. 测试连接: picgo-helper profile test -t aliyun")
	fmt.Println("  4. 切换图床: picgo-helper backend use aliyun")
	fmt.Println()
	fmt.Println("💡 提示:")
	fmt.Println("  - 工具会自动加载当前目录的 .env 文件")
	fmt.Println("  - 也可使用 --config 指定其他配置文件: picgo-helper --config my.env backend list")

	return nil
}
