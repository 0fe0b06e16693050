// internal/services/session_service.go
package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Corphon/SceneVideoMaker/internal/editor"
	apperrors "github.com/Corphon/SceneVideoMaker/internal/errors"
	"github.com/Corphon/SceneVideoMaker/internal/models"
	"github.com/Corphon/SceneVideoMaker/internal/utils"
)

var (
	ErrSessionNotFound = apperrors.NewNotFoundError("session not found", nil)
	ErrSessionLimit    = apperrors.NewProcessingError("too many active sessions, try again later", nil)
)

// ProjectSource 为新会话提供初始项目
type ProjectSource interface {
	NewProject() models.Project
}

// Session 一个浏览器页面对应的临时编辑状态，不做持久化
type Session struct {
	ID        string
	CreatedAt time.Time
	Store     *editor.Store

	lastSeen atomic.Int64 // unix nano
	active   atomic.Int32 // 打开的 websocket 连接数
	cancel   context.CancelFunc
}

// Touch 刷新最后活跃时间
func (s *Session) Touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen 最后活跃时间
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Acquire 标记有长连接在使用会话，清理时跳过
func (s *Session) Acquire() {
	s.active.Add(1)
	s.Touch()
}

// Release 与 Acquire 配对
func (s *Session) Release() {
	s.active.Add(-1)
	s.Touch()
}

// InUse 有打开的连接或正在生成
func (s *Session) InUse() bool {
	return s.active.Load() > 0 || s.Store.Snapshot().Generating()
}

func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	return s.active.Load() <= 0 && now.Sub(s.LastSeen()) > ttl
}

// SessionService 管理内存中的会话
type SessionService struct {
	ctx     context.Context
	seeds   ProjectSource
	ttl     time.Duration
	limit   int
	logger  *utils.Logger
	metrics *utils.MetricsCollector
	stats   *utils.APIMetrics

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionService 创建会话服务；ctx 结束时所有会话的状态仓库一并停止。
// limit 为同时存在的会话上限，0 表示不限制
func NewSessionService(ctx context.Context, seeds ProjectSource, ttl time.Duration, limit int, logger *utils.Logger, metrics *utils.MetricsCollector) *SessionService {
	return &SessionService{
		ctx:      ctx,
		seeds:    seeds,
		ttl:      ttl,
		limit:    limit,
		logger:   logger,
		metrics:  metrics,
		stats:    utils.NewAPIMetrics(metrics, logger),
		sessions: make(map[string]*Session),
	}
}

// Create 新建会话，初始项目来自 seeds；达到上限时返回 ErrSessionLimit
func (s *SessionService) Create() (*Session, error) {
	s.mu.Lock()
	if s.limit > 0 && len(s.sessions) >= s.limit {
		s.mu.Unlock()
		s.metrics.IncrementCounter("sessions.rejected")
		s.logger.Warn("session limit reached", map[string]interface{}{"limit": s.limit})
		return nil, ErrSessionLimit
	}

	ctx, cancel := context.WithCancel(s.ctx)
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Store:     editor.NewStore(editor.NewState(s.seeds.NewProject())),
		cancel:    cancel,
	}
	session.Touch()
	s.sessions[session.ID] = session
	count := len(s.sessions)
	s.mu.Unlock()

	go session.Store.Run(ctx)

	s.metrics.SetGauge("sessions.active", int64(count))
	s.logger.Info("session created", map[string]interface{}{"session": session.ID})
	return session, nil
}

// Get 获取会话并刷新活跃时间
func (s *SessionService) Get(id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	session.Touch()
	return session, nil
}

// Dispatch 对会话应用一个编辑动作
func (s *SessionService) Dispatch(ctx context.Context, id string, action editor.Action) (editor.State, error) {
	session, err := s.Get(id)
	if err != nil {
		return editor.State{}, err
	}

	state, err := session.Store.Dispatch(ctx, action)
	if err != nil {
		s.logger.Warn("editor action rejected", map[string]interface{}{
			"session": id,
			"action":  editor.Name(action),
			"error":   err.Error(),
		})
		return state, err
	}

	s.stats.RecordSceneAction(editor.Name(action))
	s.logger.Debug("editor action applied", map[string]interface{}{
		"session": id,
		"action":  editor.Name(action),
		"version": state.Version,
		"scenes":  len(state.Project.Scenes),
	})
	return state, nil
}

// Remove 删除会话并停止其状态仓库
func (s *SessionService) Remove(id string) bool {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if ok {
		session.cancel()
		s.metrics.SetGauge("sessions.active", int64(count))
	}
	return ok
}

// Recycle 同一浏览器重新加载页面时丢弃旧会话；仍在使用的会话保留
func (s *SessionService) Recycle(id string) bool {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || session.InUse() {
		return false
	}
	return s.Remove(id)
}

// Count 当前会话数
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep 删除空闲超过 ttl 的会话，返回删除数量
func (s *SessionService) Sweep(now time.Time) int {
	s.mu.RLock()
	expired := make([]string, 0)
	for id, session := range s.sessions {
		if session.idle(now, s.ttl) && !session.Store.Snapshot().Generating() {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, id := range expired {
		if s.Remove(id) {
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("expired sessions removed", map[string]interface{}{
			"removed":   removed,
			"remaining": s.Count(),
		})
	}
	return removed
}

// RunSweeper 定期清理空闲会话，直到 ctx 结束
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

// Close 停止所有会话
func (s *SessionService) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.cancel()
	}
	s.metrics.SetGauge("sessions.active", 0)
}
