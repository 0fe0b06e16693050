// internal/api/handlers.go
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/SceneVideoMaker/internal/editor"
	apperrors "github.com/Corphon/SceneVideoMaker/internal/errors"
	"github.com/Corphon/SceneVideoMaker/internal/models"
	"github.com/Corphon/SceneVideoMaker/internal/services"
	"github.com/Corphon/SceneVideoMaker/internal/utils"
)

// Handler 处理API请求
type Handler struct {
	Sessions   *services.SessionService    // 会话服务
	Generation *services.GenerationService // 视频生成服务
	Metrics    *utils.MetricsCollector
	Logger     *utils.Logger
	Response   *ResponseHelper // 响应助手
}

// NewHandler 创建API处理器
func NewHandler(sessions *services.SessionService, generation *services.GenerationService, metrics *utils.MetricsCollector, logger *utils.Logger) *Handler {
	return &Handler{
		Sessions:   sessions,
		Generation: generation,
		Metrics:    metrics,
		Logger:     logger,
		Response:   NewResponseHelper(),
	}
}

// updateSceneRequest PATCH 场景字段的请求体
type updateSceneRequest struct {
	Field string      `json:"field" binding:"required"`
	Value interface{} `json:"value"`
}

// sessionCookie 记录本浏览器上次页面的会话，重新加载时回收
const sessionCookie = "scene_session"

// IndexPage 每次加载页面都创建新会话，项目带两个示例场景
func (h *Handler) IndexPage(c *gin.Context) {
	if previous, err := c.Cookie(sessionCookie); err == nil && previous != "" {
		h.Sessions.Recycle(previous)
	}

	session, err := h.Sessions.Create()
	if err != nil {
		status, _ := classifyError(err)
		c.String(status, apperrors.MessageOf(err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, session.ID, 0, "/", "", c.Request.TLS != nil, true)

	c.HTML(http.StatusOK, "index.html", gin.H{
		"SessionID":   session.ID,
		"State":       session.Store.Snapshot(),
		"Moods":       models.Moods(),
		"MinDuration": models.MinSceneDuration,
		"MaxDuration": models.MaxSceneDuration,
	})
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"status":   "ok",
		"sessions": h.Sessions.Count(),
	})
}

// GetMetrics 返回内存指标
func (h *Handler) GetMetrics(c *gin.Context) {
	h.Response.Success(c, h.Metrics.GetMetrics())
}

// CreateSession 创建会话
func (h *Handler) CreateSession(c *gin.Context) {
	session, err := h.Sessions.Create()
	if err != nil {
		h.Response.FromError(c, err, nil)
		return
	}
	c.Header("Location", "/api/sessions/"+session.ID)
	h.Response.Created(c, sessionView(session.ID, session.Store.Snapshot()), "会话创建成功")
}

// GetSession 获取会话当前快照
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		h.Response.FromError(c, err, nil)
		return
	}
	h.Response.Success(c, session.Store.Snapshot())
}

// DeleteSession 丢弃会话
func (h *Handler) DeleteSession(c *gin.Context) {
	if !h.Sessions.Remove(c.Param("id")) {
		h.Response.FromError(c, services.ErrSessionNotFound, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetTitle 修改标题
func (h *Handler) SetTitle(c *gin.Context) {
	var req struct {
		Title *string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求参数错误", err.Error())
		return
	}
	h.dispatch(c, editor.SetTitle{Title: *req.Title})
}

// AddScene 在末尾追加默认场景
func (h *Handler) AddScene(c *gin.Context) {
	h.dispatch(c, editor.AddScene{})
}

// UpdateScene 按位置修改场景字段
func (h *Handler) UpdateScene(c *gin.Context) {
	index, ok := h.sceneIndex(c)
	if !ok {
		return
	}
	var req updateSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求参数错误", err.Error())
		return
	}
	h.dispatch(c, editor.UpdateScene{Index: index, Field: req.Field, Value: req.Value})
}

// RemoveScene 按位置删除场景，越界时不做任何事
func (h *Handler) RemoveScene(c *gin.Context) {
	index, ok := h.sceneIndex(c)
	if !ok {
		return
	}
	h.dispatch(c, editor.RemoveScene{Index: index})
}

// UpdateSceneByID 按场景标识修改字段
func (h *Handler) UpdateSceneByID(c *gin.Context) {
	var req updateSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求参数错误", err.Error())
		return
	}
	h.dispatch(c, editor.UpdateSceneByID{ID: c.Param("sceneID"), Field: req.Field, Value: req.Value})
}

// RemoveSceneByID 按场景标识删除
func (h *Handler) RemoveSceneByID(c *gin.Context) {
	h.dispatch(c, editor.RemoveSceneByID{ID: c.Param("sceneID")})
}

// Generate 提交当前项目生成视频，等待结果后返回快照
func (h *Handler) Generate(c *gin.Context) {
	session, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		h.Response.FromError(c, err, nil)
		return
	}

	state, err := h.Generation.Generate(c.Request.Context(), session)
	if err != nil {
		h.Response.FromError(c, err, state)
		return
	}
	h.Response.Success(c, state, "视频生成成功")
}

// generateInBackground websocket 触发的生成，结果通过订阅推送；
// 生成失败已写入状态，onReject 只收到冲突等未进入生成的错误
func (h *Handler) generateInBackground(session *services.Session, onReject func(error)) {
	go func() {
		if _, err := h.Generation.Generate(context.Background(), session); err != nil && !apperrors.IsGenerationError(err) {
			onReject(err)
		}
	}()
}

func (h *Handler) dispatch(c *gin.Context, action editor.Action) {
	state, err := h.Sessions.Dispatch(c.Request.Context(), c.Param("id"), action)
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		h.Response.FromError(c, err, nil)
	case err != nil:
		h.Response.FromError(c, err, state)
	default:
		h.Response.Success(c, state)
	}
}

func (h *Handler) sceneIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.Response.BadRequest(c, "场景序号必须是整数", err.Error())
		return 0, false
	}
	return index, true
}

// sessionView 创建会话时返回的结构
func sessionView(id string, state editor.State) gin.H {
	return gin.H{"session_id": id, "state": state}
}
