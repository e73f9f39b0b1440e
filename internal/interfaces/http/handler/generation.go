package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"idea-forge-api/internal/application/export"
	"idea-forge-api/internal/application/ideagen"
	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/interfaces/http/dto"
	"idea-forge-api/pkg/errors"
)

// GenerationHandler 创意生成处理器
type GenerationHandler struct {
	svc *ideagen.Service
}

// NewGenerationHandler 创建创意生成处理器
func NewGenerationHandler(svc *ideagen.Service) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

// Generate 为会话生成一批创意
// @Summary 生成创意
// @Description 校验表单后同步生成三条创意，同一会话同时只能有一个生成
// @Tags Generations
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.GenerationRequestBody true "表单内容"
// @Success 201 {object} dto.Response[dto.GenerationBatchResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "会话已有生成在进行"
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/generations [post]
func (h *GenerationHandler) Generate(c *gin.Context) {
	sessionID := dto.BindSessionID(c)

	draft, err := bindDraft(c)
	if err != nil {
		writeError(c, err)
		return
	}

	batch, err := h.svc.Generate(c.Request.Context(), sessionID, draft)
	if err != nil {
		writeError(c, err)
		return
	}

	dto.Created(c, dto.ToGenerationBatchResponse(batch))
}

// Latest 获取会话最近一次生成
// @Summary 获取最近一次生成
// @Tags Generations
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.GenerationBatchResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/generations/latest [get]
func (h *GenerationHandler) Latest(c *gin.Context) {
	batch, err := h.svc.Latest(c.Request.Context(), dto.BindSessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, dto.ToGenerationBatchResponse(batch))
}

// GetIdea 获取单条创意
// @Summary 获取单条创意
// @Tags Generations
// @Produce json
// @Param sid path string true "会话 ID"
// @Param pos path int true "序号 1-3"
// @Success 200 {object} dto.Response[entity.IdeaView]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/ideas/{pos} [get]
func (h *GenerationHandler) GetIdea(c *gin.Context) {
	view, err := h.svc.Idea(c.Request.Context(), dto.BindSessionID(c), dto.BindPosition(c))
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, view)
}

// ExportIdea 导出会话中的单条创意
// @Summary 导出创意
// @Description format 为 text、json、html 或 filename，默认 text
// @Tags Exports
// @Produce plain,json,html
// @Param sid path string true "会话 ID"
// @Param pos path int true "序号 1-3"
// @Param format query string false "导出格式"
// @Success 200 {string} string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/ideas/{pos}/export [get]
func (h *GenerationHandler) ExportIdea(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		writeError(c, err)
		return
	}

	view, err := h.svc.Idea(c.Request.Context(), dto.BindSessionID(c), dto.BindPosition(c))
	if err != nil {
		writeError(c, err)
		return
	}

	doc, err := export.Render(view.Idea, format)
	if err != nil {
		writeError(c, err)
		return
	}
	writeDocument(c, doc)
}

// writeDocument 输出导出内容，JSON 导出附带下载文件名
func writeDocument(c *gin.Context, doc *export.Document) {
	if doc.Filename != "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	}
	c.Data(http.StatusOK, doc.ContentType, []byte(doc.Body))
}

// maxExportBodyBytes 无状态导出请求体上限
const maxExportBodyBytes = 1 << 20

// ExportHandler 无状态导出处理器
type ExportHandler struct{}

// NewExportHandler 创建无状态导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// Export 导出请求体中的创意
// @Summary 导出创意（无状态）
// @Description 请求体为规范 JSON 格式的创意，未知字段会被拒绝
// @Tags Exports
// @Accept json
// @Produce plain,json,html
// @Param format query string false "导出格式"
// @Success 200 {string} string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /v1/exports [post]
func (h *ExportHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxExportBodyBytes)
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(c, err)
			return
		}
		writeError(c, errors.ErrInvalidParam.WithDetail("failed to read request body").WithError(err))
		return
	}

	idea, err := export.DecodeCanonicalJSON(string(raw))
	if err != nil {
		// 结构完整但内容不满足导出前提时返回 422
		var serr *entity.SerializationError
		if stderrors.As(err, &serr) {
			writeError(c, err)
			return
		}
		writeError(c, errors.ErrInvalidParam.WithDetail("request body is not a valid idea").WithError(err))
		return
	}

	doc, err := export.Render(idea, format)
	if err != nil {
		writeError(c, err)
		return
	}
	writeDocument(c, doc)
}
