// Package port 定义工作流层对基础设施的最小依赖
package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 按提供商名称获取 ChatModel，名称为空时返回默认提供商
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}
