package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"idea-forge-api/internal/application/request"
	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/pkg/logger"
)

// apiClient 创意生成 API 客户端
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// apiError 服务端返回的错误
type apiError struct {
	Status  int
	Message string
	Code    string
	Field   string
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %s)", e.Field)
	}
	return msg
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		ErrorCode string `json:"error_code"`
		Field     string `json:"field"`
		Details   string `json:"details"`
	} `json:"error"`
}

type generationBatch struct {
	GenerationID string            `json:"generation_id"`
	SessionID    string            `json:"session_id"`
	Ideas        []entity.IdeaView `json:"ideas"`
}

// Generate 为会话请求一批创意
func (c *apiClient) Generate(ctx context.Context, sessionID string, draft *request.RequestDraft) (*generationBatch, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/sessions/%s/generations", c.baseURL, url.PathEscape(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug(ctx, "requesting idea generation", "endpoint", endpoint)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	logger.Debug(ctx, "idea generation responded",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unexpected response (%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode, Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.ErrorCode
			apiErr.Field = env.Error.Field
		}
		return nil, apiErr
	}

	var batch generationBatch
	if err := json.Unmarshal(env.Data, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode generation: %w", err)
	}
	return &batch, nil
}
