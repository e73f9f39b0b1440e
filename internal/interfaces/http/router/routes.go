// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers, generationLimit gin.HandlerFunc) {
	// 表单
	v1.GET("/form/defaults", h.Form.Defaults)
	v1.POST("/requests/validate", h.Form.Validate)

	// 无状态导出
	v1.POST("/exports", h.Export.Export)

	// 生成任务
	v1.GET("/generations/:gid", h.Job.GetJob)

	// 会话
	sessions := v1.Group("/sessions/:sid")
	{
		sessions.POST("/generations", generationLimit, h.Generation.Generate)
		sessions.GET("/generations", h.Job.ListSessionJobs)
		sessions.GET("/generations/latest", h.Generation.Latest)
		sessions.GET("/ideas/:pos", h.Generation.GetIdea)
		sessions.GET("/ideas/:pos/export", h.Generation.ExportIdea)
	}
}
