// Package handler 提供 HTTP 请求处理器
package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"idea-forge-api/internal/application/export"
	"idea-forge-api/internal/application/ideagen"
	"idea-forge-api/internal/application/request"
	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/domain/repository"
	"idea-forge-api/internal/interfaces/http/dto"
	"idea-forge-api/pkg/errors"
	"idea-forge-api/pkg/logger"
)

// toAppError 将领域错误转换为 AppError，返回出错字段（如有）
func toAppError(err error) (*errors.AppError, string) {
	var (
		validationErr    *request.ValidationError
		serializationErr *entity.SerializationError
		generationErr    *entity.GenerationFailure
		maxBytesErr      *http.MaxBytesError
	)

	switch {
	case stderrors.As(err, &validationErr):
		return errors.ErrInvalidParam.WithDetail(validationErr.Reason).WithError(err), validationErr.Field
	case stderrors.As(err, &serializationErr):
		return errors.ErrSerializationFailed.WithDetail(serializationErr.Reason).WithError(err), serializationErr.Field
	case stderrors.As(err, &generationErr):
		return errors.ErrGenerationFailed.WithError(err), ""
	case stderrors.Is(err, repository.ErrGenerationInFlight):
		return errors.ErrGenerationInFlight.WithError(err), ""
	case stderrors.Is(err, repository.ErrBatchNotFound):
		return errors.ErrGenerationNotFound.WithError(err), ""
	case stderrors.Is(err, ideagen.ErrPositionOutOfRange):
		return errors.ErrIdeaNotFound.WithDetail("position must be between 1 and 3").WithError(err), "position"
	case stderrors.Is(err, ideagen.ErrJobNotFound):
		return errors.ErrNotFound.WithDetail("generation job not found").WithError(err), ""
	case stderrors.Is(err, ideagen.ErrJobsDisabled):
		return errors.ErrServiceUnavailable.WithDetail("job history is disabled").WithError(err), ""
	case stderrors.Is(err, export.ErrUnsupportedFormat):
		return errors.ErrUnsupportedFormat.WithDetail("format must be one of text, json, html, filename").WithError(err), "format"
	case stderrors.As(err, &maxBytesErr):
		return errors.ErrRequestTooLarge.WithDetail(fmt.Sprintf("request body must not exceed %d bytes", maxBytesErr.Limit)).WithError(err), "body"
	case errors.IsAppError(err):
		return errors.AsAppError(err), ""
	default:
		return errors.ErrInternalError.WithError(err), ""
	}
}

// writeError 写入统一错误响应
func writeError(c *gin.Context, err error) {
	appErr, field := toAppError(err)
	ctx := c.Request.Context()

	if appErr.HTTPStatus >= 500 {
		logger.Error(ctx, "request failed", err, "code", string(appErr.Code))
	} else {
		logger.Debug(ctx, "request rejected", "code", string(appErr.Code), "error", err.Error())
	}

	// 内部错误不向客户端暴露底层原因
	detail := appErr.Detail
	if detail == "" && appErr.HTTPStatus != 500 {
		detail = err.Error()
	}

	dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
		ErrorCode: string(appErr.Code),
		Field:     field,
		Details:   detail,
	})
}
