// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"idea-forge-api/internal/application/ideagen"
	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/domain/repository"
	"idea-forge-api/internal/interfaces/http/dto"
)

// JobHandler 生成任务处理器
type JobHandler struct {
	svc *ideagen.Service
}

// NewJobHandler 创建任务处理器
func NewJobHandler(svc *ideagen.Service) *JobHandler {
	return &JobHandler{svc: svc}
}

// GetJob 获取任务详情
// @Summary 获取生成任务
// @Description 获取指定生成的审计记录，需启用 Postgres
// @Tags Jobs
// @Produce json
// @Param gid path string true "生成 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "未启用任务记录"
// @Router /v1/generations/{gid} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.svc.Job(c.Request.Context(), dto.BindGenerationID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, dto.ToJobResponse(job))
}

// ListSessionJobs 获取会话任务列表
// @Summary 会话生成任务列表
// @Tags Jobs
// @Produce json
// @Param sid path string true "会话 ID"
// @Param status query string false "任务状态"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.JobListResponse]
// @Failure 503 {object} dto.ErrorResponse "未启用任务记录"
// @Router /v1/sessions/{sid}/generations [get]
func (h *JobHandler) ListSessionJobs(c *gin.Context) {
	page := dto.BindPage(c)
	status := entity.JobStatus(c.Query("status"))

	result, err := h.svc.SessionJobs(c.Request.Context(), dto.BindSessionID(c), status,
		repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		writeError(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.ToJobListResponse(result.Items),
		dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}
