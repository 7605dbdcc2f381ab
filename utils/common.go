package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

var StopWhenErr = true

func CheckErr(e error) error {
	if e != nil {
		fmt.Fprintln(os.Stderr, e)
		fmt.Fprintf(
			os.Stderr,
			"\n%s\n\n%s\n\n",
			strings.Repeat("=", 20),
			"Report the following if it is a bug",
		)
		if StopWhenErr {
			panic(e)
		}
	}
	return e
}

func PrettyPrint(i interface{}) string {
	s, _ := json.MarshalIndent(i, "", "  ")
	return string(s)
}

// ParseValue 把命令行参数解析为 JSON 值
// 合法 JSON（数字、布尔、null、对象、数组、带引号字符串）按 JSON 解析，其余按原样作为字符串
func ParseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

// ParseAssignments 解析 key=value 列表
// typed 为 false 时 value 一律作为字符串，避免 appId 之类的数字串被转成数字
func ParseAssignments(args []string, typed bool) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("无效的参数 %q，格式应为 key=value", arg)
		}
		if typed {
			out[key] = ParseValue(value)
		} else {
			out[key] = value
		}
	}
	return out, nil
}

// MaskSecret 隐藏密钥类字段的中间部分
func MaskSecret(s string) string {
	if len(s) <= 6 {
		return strings.Repeat("*", len(s))
	}
	return s[:3] + strings.Repeat("*", len(s)-6) + s[len(s)-3:]
}
