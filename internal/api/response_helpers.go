// internal/api/response_helpers.go
package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/SceneVideoMaker/internal/editor"
	apperrors "github.com/Corphon/SceneVideoMaker/internal/errors"
	"github.com/Corphon/SceneVideoMaker/internal/generation"
	"github.com/Corphon/SceneVideoMaker/internal/services"
)

// APIResponse 统一响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResponseHelper 响应助手类
type ResponseHelper struct{}

// NewResponseHelper 创建响应助手
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Success 成功响应
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	rh.write(c, http.StatusOK, data, nil, message...)
}

// Created 创建成功响应
func (rh *ResponseHelper) Created(c *gin.Context, data interface{}, message ...string) {
	rh.write(c, http.StatusCreated, data, nil, message...)
}

// Error 错误响应
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	rh.ErrorWithData(c, statusCode, errorCode, message, nil, details...)
}

// ErrorWithData 错误响应，同时带上当前状态（例如生成失败后的快照）
func (rh *ResponseHelper) ErrorWithData(c *gin.Context, statusCode int, errorCode, message string, data interface{}, details ...string) {
	if statusCode >= http.StatusInternalServerError && errorCode != ErrorGenerationFailed {
		message = sanitizeErrorMessage(message)
	}

	apiError := &APIError{Code: errorCode, Message: message}
	if len(details) > 0 {
		apiError.Details = details[0]
	}
	rh.write(c, statusCode, data, apiError)
}

// BadRequest 400错误响应
func (rh *ResponseHelper) BadRequest(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusBadRequest, ErrorBadRequest, message, details...)
}

// NotFound 404错误响应
func (rh *ResponseHelper) NotFound(c *gin.Context, code, message string, details ...string) {
	rh.Error(c, http.StatusNotFound, code, message, details...)
}

// InternalError 500错误响应
func (rh *ResponseHelper) InternalError(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusInternalServerError, ErrorInternalError, message, details...)
}

// FromError 按错误类型选择状态码和错误代码
func (rh *ResponseHelper) FromError(c *gin.Context, err error, data interface{}) {
	status, code := classifyError(err)
	rh.ErrorWithData(c, status, code, apperrors.MessageOf(err), data)
}

func (rh *ResponseHelper) write(c *gin.Context, status int, data interface{}, apiError *APIError, message ...string) {
	response := &APIResponse{
		Success:   apiError == nil,
		Data:      data,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}
	if len(message) > 0 {
		response.Message = message[0]
	}
	c.JSON(status, response)
}

// getRequestID 获取请求ID
func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// classifyError 把领域错误映射为 HTTP 状态码和错误代码
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound, ErrorSessionNotFound
	case errors.Is(err, services.ErrSessionLimit):
		return http.StatusServiceUnavailable, ErrorSessionLimit
	case errors.Is(err, generation.ErrNotConfigured):
		return http.StatusServiceUnavailable, ErrorGenerationDisabled
	case errors.Is(err, editor.ErrSceneNotFound):
		return http.StatusNotFound, ErrorSceneNotFound
	case errors.Is(err, editor.ErrIndexOutOfRange):
		return http.StatusBadRequest, ErrorSceneIndexInvalid
	case errors.Is(err, editor.ErrGenerationInProgress):
		return http.StatusConflict, ErrorGenerationInProgress
	}

	errType, ok := apperrors.TypeOf(err)
	if !ok {
		return http.StatusInternalServerError, ErrorInternalError
	}
	switch errType {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest, ErrorSceneInvalid
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound, ErrorNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict, ErrorConflict
	case apperrors.ErrorTypeGeneration:
		return http.StatusBadGateway, ErrorGenerationFailed
	default:
		return http.StatusInternalServerError, ErrorInternalError
	}
}

// sanitizeErrorMessage 内部错误消息中可能带有密钥等敏感信息
func sanitizeErrorMessage(message string) string {
	lower := strings.ToLower(message)
	for _, pattern := range []string{"api_key", "apikey", "password", "secret", "token"} {
		if strings.Contains(lower, pattern) {
			return "An internal error occurred"
		}
	}
	return message
}
