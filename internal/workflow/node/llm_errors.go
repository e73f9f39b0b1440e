package node

import "strings"

// responseFormatMarkers 提供商不支持结构化输出时报错信息中的特征片段
var responseFormatMarkers = []string{
	"response_format",
	"json_schema",
	"response_schema",
	"response_mime_type",
	"failed to parse",
}

// IsResponseFormatUnsupportedError 判断错误是否因提供商不支持结构化输出，此时应退回纯提示词模式
func IsResponseFormatUnsupportedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range responseFormatMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return strings.Contains(msg, "response") &&
		(strings.Contains(msg, "unknown parameter") || strings.Contains(msg, "invalid"))
}
