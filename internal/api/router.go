// internal/api/router.go
package api

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/SceneVideoMaker/internal/config"
	"github.com/Corphon/SceneVideoMaker/internal/services"
	"github.com/Corphon/SceneVideoMaker/internal/utils"
	"github.com/Corphon/SceneVideoMaker/web"
)

// Dependencies 路由需要的服务
type Dependencies struct {
	Config     *config.Config
	Sessions   *services.SessionService
	Generation *services.GenerationService
	Metrics    *utils.MetricsCollector
	Logger     *utils.Logger
}

// SetupRouter 配置HTTP路由
func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Config == nil || deps.Sessions == nil || deps.Generation == nil {
		return nil, fmt.Errorf("路由依赖未正确初始化")
	}
	if deps.Metrics == nil {
		deps.Metrics = utils.GetMetricsCollector()
	}
	if deps.Logger == nil {
		deps.Logger = utils.GetLogger()
	}

	if !deps.Config.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("加载页面模板失败: %w", err)
	}

	handler := NewHandler(deps.Sessions, deps.Generation, deps.Metrics, deps.Logger)

	r := gin.New()
	r.Use(recoveryMiddleware(deps.Logger, handler.Response))
	r.Use(RequestID())
	r.Use(RequestLogger(deps.Logger, utils.NewAPIMetrics(deps.Metrics, deps.Logger)))
	r.Use(corsMiddleware())

	// HTTPS重定向（生产环境）
	if !deps.Config.DebugMode {
		r.Use(func(c *gin.Context) {
			if proto := c.Request.Header.Get("X-Forwarded-Proto"); proto != "" && proto != "https" {
				c.Redirect(http.StatusPermanentRedirect,
					"https://"+c.Request.Host+c.Request.URL.RequestURI())
				c.Abort()
				return
			}
			c.Next()
		})
	}

	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(web.Static()))

	// 页面路由
	r.GET("/", handler.IndexPage)

	// WebSocket 支持
	r.GET("/ws/sessions/:id", handler.SessionWebSocket)

	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/metrics", handler.GetMetrics)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", handler.CreateSession)
			sessions.GET("/:id", handler.GetSession)
			sessions.DELETE("/:id", handler.DeleteSession)
			sessions.PUT("/:id/title", handler.SetTitle)

			sessions.POST("/:id/scenes", handler.AddScene)
			sessions.PATCH("/:id/scenes/:index", handler.UpdateScene)
			sessions.DELETE("/:id/scenes/:index", handler.RemoveScene)

			sessions.PATCH("/:id/scene-ids/:sceneID", handler.UpdateSceneByID)
			sessions.DELETE("/:id/scene-ids/:sceneID", handler.RemoveSceneByID)

			sessions.POST("/:id/generate", handler.Generate)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			handler.Response.NotFound(c, ErrorNotFound, "接口不存在", c.Request.Method+" "+c.Request.URL.Path)
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	})

	return r, nil
}

// recoveryMiddleware 捕获 panic，记录日志并返回统一的错误格式
func recoveryMiddleware(logger *utils.Logger, response *ResponseHelper) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered", map[string]interface{}{
			"path":       c.Request.URL.Path,
			"panic":      fmt.Sprint(recovered),
			"request_id": c.GetString(requestIDKey),
		})
		response.InternalError(c, "服务器内部错误")
		c.Abort()
	})
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"inc": func(i int) int { return i + 1 },
		"title": func(v interface{}) string {
			s := fmt.Sprint(v)
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}
}
