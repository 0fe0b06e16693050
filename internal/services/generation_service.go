// internal/services/generation_service.go
package services

import (
	"context"
	"time"

	"github.com/Corphon/SceneVideoMaker/internal/editor"
	apperrors "github.com/Corphon/SceneVideoMaker/internal/errors"
	"github.com/Corphon/SceneVideoMaker/internal/models"
	"github.com/Corphon/SceneVideoMaker/internal/utils"
)

// Generator 远程生成服务客户端
type Generator interface {
	Generate(ctx context.Context, project models.Project) (string, error)
}

// 客户端未返回就中断时使用（例如 panic）
var errGenerationInterrupted = apperrors.NewGenerationError(editor.DefaultGenerationError, nil)

// GenerationService 驱动 Idle → Generating → Ready/Failed 状态机
type GenerationService struct {
	client Generator
	logger *utils.Logger
	stats  *utils.APIMetrics
}

// NewGenerationService 创建生成服务
func NewGenerationService(client Generator, logger *utils.Logger, metrics *utils.MetricsCollector) *GenerationService {
	return &GenerationService{
		client: client,
		logger: logger,
		stats:  utils.NewAPIMetrics(metrics, logger),
	}
}

// Generate 提交会话当前的标题和场景，等待结果。
// 已有请求在进行时返回冲突错误；调用方断开不会中止已发出的请求。
// 返回的 error 为生成失败原因，此时 state 中的 Error 已经设置。
func (s *GenerationService) Generate(ctx context.Context, session *Session) (state editor.State, err error) {
	started, err := session.Store.Dispatch(ctx, editor.GenerationStarted{})
	if err != nil {
		return started, err
	}

	log := s.logger.With(map[string]interface{}{"session": session.ID})
	log.Info("video generation started", map[string]interface{}{
		"title":  started.Project.Title,
		"scenes": len(started.Project.Scenes),
	})

	begin := time.Now()
	videoURL := ""
	genErr := error(errGenerationInterrupted)

	// 无论成功、失败还是 panic，都要清除进行中状态
	defer func() {
		var completion editor.Action = editor.GenerationSucceeded{VideoURL: videoURL}
		if genErr != nil {
			completion = editor.GenerationFailed{Message: apperrors.MessageOf(genErr)}
		}

		final, dispatchErr := session.Store.Dispatch(context.WithoutCancel(ctx), completion)
		if dispatchErr != nil {
			log.Error("failed to record generation result", map[string]interface{}{"error": dispatchErr.Error()})
		}

		s.stats.RecordGeneration(genErr == nil, time.Since(begin))
		if genErr != nil {
			log.Warn("video generation failed", map[string]interface{}{"error": genErr.Error()})
		} else {
			log.Info("video generation finished", map[string]interface{}{"video_url": videoURL})
		}

		state, err = final, genErr
	}()

	videoURL, genErr = s.client.Generate(context.WithoutCancel(ctx), started.Project)
	return
}
