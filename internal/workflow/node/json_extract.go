// Package node 提供工作流节点共用的解析工具
package node

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject 从模型输出中截取第一个 JSON 对象或数组
//
// 模型可能在 JSON 前后夹杂说明文字或 markdown 代码块，截取失败时原样返回去空白后的文本。
func ExtractJSONObject(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" || json.Valid([]byte(raw)) {
		return raw
	}

	objStart := strings.Index(raw, "{")
	arrStart := strings.Index(raw, "[")
	start, closer := -1, ""
	switch {
	case objStart >= 0 && (arrStart < 0 || objStart < arrStart):
		start, closer = objStart, "}"
	case arrStart >= 0:
		start, closer = arrStart, "]"
	default:
		return raw
	}

	end := strings.LastIndex(raw, closer)
	if end <= start {
		return raw
	}
	candidate := raw[start : end+1]
	if json.Valid([]byte(candidate)) {
		return candidate
	}
	return raw
}
