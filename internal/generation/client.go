// internal/generation/client.go
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/Corphon/SceneVideoMaker/internal/errors"
	"github.com/Corphon/SceneVideoMaker/internal/models"
	"github.com/Corphon/SceneVideoMaker/internal/utils"
)

// GeneratePath 生成接口相对于 BaseURL 的固定路径
const GeneratePath = "/api/generate"

// DefaultErrorMessage 服务端或网络没有给出可用消息时的提示
const DefaultErrorMessage = "Error generating video"

// 错误响应体最多读取的字节数
const maxErrorBody = 64 * 1024

// Client 调用远程视频生成服务。
// BaseURL 为空表示同源部署：请求发往运维配置的 Origin，
// 由前置代理把 /api/generate 转给渲染服务，返回的视频地址保持相对路径。
type Client struct {
	BaseURL    string
	Origin     string
	HTTPClient *http.Client
	logger     *utils.Logger
}

// NewClient 创建生成客户端；timeout 为 0 表示不设超时
func NewClient(baseURL, origin string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Origin:     strings.TrimRight(origin, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		logger:     utils.GetLogger(),
	}
}

// Generate 发送一次生成请求，返回可直接播放的视频地址。
// 所有失败都以 GenerationError 返回，不重试。
func (c *Client) Generate(ctx context.Context, project models.Project) (string, error) {
	target, err := c.endpoint()
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(project.Payload())
	if err != nil {
		return "", generationError("", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", generationError("", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending generation request", map[string]interface{}{
		"url":    target,
		"title":  project.Title,
		"scenes": len(project.Scenes),
	})

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", generationError("", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			return "", generationError("", readErr)
		}
		message := string(text)
		if strings.TrimSpace(message) == "" {
			message = DefaultErrorMessage
		}
		return "", generationError(message, fmt.Errorf("generation backend returned status %d", resp.StatusCode))
	}

	var out models.GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", generationError("", err)
	}

	return c.BaseURL + out.VideoURL, nil
}

// ErrNotConfigured 既没有 BaseURL 也没有 Origin
var ErrNotConfigured = apperrors.NewGenerationError("video generation is not configured: set BACKEND_URL or PUBLIC_ORIGIN", nil)

func (c *Client) endpoint() (string, error) {
	base := c.BaseURL
	if base == "" {
		base = c.Origin
	}
	if base == "" {
		return "", ErrNotConfigured
	}
	return base + GeneratePath, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// generationError 以 message 为展示文本；message 为空时取 cause 的消息，再退回默认提示
func generationError(message string, cause error) error {
	if message == "" {
		message = causeMessage(cause)
	}
	if message == "" {
		message = DefaultErrorMessage
	}
	return apperrors.NewGenerationError(message, cause)
}

// causeMessage 去掉 url.Error 的 `Post "..."` 前缀
func causeMessage(err error) string {
	if err == nil {
		return ""
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}
