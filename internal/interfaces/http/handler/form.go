package handler

import (
	"github.com/gin-gonic/gin"

	"idea-forge-api/internal/application/request"
	"idea-forge-api/internal/interfaces/http/dto"
	"idea-forge-api/pkg/errors"
)

// FormHandler 表单处理器，只做校验，不触发生成
type FormHandler struct{}

// NewFormHandler 创建表单处理器
func NewFormHandler() *FormHandler {
	return &FormHandler{}
}

// Defaults 获取表单默认值
// @Summary 获取表单默认值
// @Description 返回默认草稿和各字段的选项
// @Tags Form
// @Produce json
// @Success 200 {object} dto.Response[dto.FormDefaultsResponse]
// @Router /v1/form/defaults [get]
func (h *FormHandler) Defaults(c *gin.Context) {
	dto.Success(c, &dto.FormDefaultsResponse{
		Draft:  request.NewRequestDraft(),
		Fields: request.FormFields(),
	})
}

// Validate 校验生成请求
// @Summary 校验生成请求
// @Description 按表单规则校验并返回规范化后的请求
// @Tags Form
// @Accept json
// @Produce json
// @Param body body dto.GenerationRequestBody true "表单内容"
// @Success 200 {object} dto.Response[entity.GenerationRequest]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/requests/validate [post]
func (h *FormHandler) Validate(c *gin.Context) {
	draft, err := bindDraft(c)
	if err != nil {
		writeError(c, err)
		return
	}
	req, err := draft.Build()
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, req)
}

// bindDraft 绑定请求体，未出现的字段保留表单默认值
func bindDraft(c *gin.Context) (*request.RequestDraft, error) {
	var body dto.GenerationRequestBody
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, errors.ErrInvalidParam.WithDetail("request body must be a JSON object of strings").WithError(err)
		}
	}
	return body.ToDraft(), nil
}
