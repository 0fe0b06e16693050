// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorConflict      = "CONFLICT"

	// 会话相关错误
	ErrorSessionNotFound = "SESSION_NOT_FOUND"
	ErrorSessionLimit    = "SESSION_LIMIT_REACHED"

	// 场景相关错误
	ErrorSceneNotFound     = "SCENE_NOT_FOUND"
	ErrorSceneInvalid      = "SCENE_INVALID"
	ErrorSceneIndexInvalid = "SCENE_INDEX_OUT_OF_RANGE"

	// 视频生成相关错误
	ErrorGenerationFailed     = "GENERATION_FAILED"
	ErrorGenerationInProgress = "GENERATION_IN_PROGRESS"
	ErrorGenerationDisabled   = "GENERATION_NOT_CONFIGURED"
)
