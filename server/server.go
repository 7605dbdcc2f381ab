// Package server 提供本地 HTTP 接口
// REST 接口覆盖配置存储与插件管理，/ws 推送事件总线上的全部事件
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Wsine/picgo-helper/core"
	"github.com/Wsine/picgo-helper/imgbed"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options 服务依赖，Checker 为 nil 时凭据测试接口返回 501
type Options struct {
	Store       *core.Store
	Plugins     *core.PluginManager
	Checker     *imgbed.Checker
	CORSOrigins []string
	Logger      *slog.Logger
}

// Server HTTP 服务
type Server struct {
	store   *core.Store
	plugins *core.PluginManager
	checker *imgbed.Checker
	hub     *wsHub
	router  *gin.Engine
	logger  *slog.Logger
}

// NewServer 创建服务并注册路由
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:   opts.Store,
		plugins: opts.Plugins,
		checker: opts.Checker,
		hub:     newWSHub(opts.Store.Bus(), logger),
		router:  gin.New(),
		logger:  logger,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	if len(opts.CORSOrigins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	s.routes()
	go s.hub.run()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/ws", func(c *gin.Context) {
		s.hub.serveWS(c.Writer, c.Request)
	})

	api := s.router.Group("/api/v1")
	{
		api.GET("/config", s.handleGetConfig)
		api.PUT("/config", s.handleSaveConfig)
		api.DELETE("/config", s.handleUnsetConfig)

		api.GET("/backends", s.handleListBackends)
		api.GET("/backends/active", s.handleGetActiveBackend)
		api.PUT("/backends/active", s.handleSetActiveBackend)
		api.PUT("/backends/:type/visible", s.handleSetVisible)

		api.GET("/backends/:type/profiles", s.handleListProfiles)
		api.POST("/backends/:type/profiles", s.handleUpsertProfile)
		api.PUT("/backends/:type/profiles/:id", s.handleUpsertProfile)
		api.DELETE("/backends/:type/profiles/:id", s.handleDeleteProfile)
		api.POST("/backends/:type/profiles/:id/select", s.handleSelectProfile)
		api.POST("/backends/:type/profiles/:id/test", s.handleTestProfile)

		api.GET("/transformer", s.handleGetTransformer)
		api.PUT("/transformer", s.handleSetTransformer)

		api.POST("/plugins/install", s.handlePluginOp(s.plugins.Install))
		api.POST("/plugins/uninstall", s.handlePluginOp(s.plugins.Uninstall))
		api.POST("/plugins/update", s.handlePluginOp(s.plugins.Update))
		api.POST("/plugins/toggle", s.handleTogglePlugin)
	}
}

// requestLogger 以 slog 记录请求
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close 断开所有 WebSocket 客户端并取消事件订阅
func (s *Server) Close() {
	s.hub.Close()
}

// Run 监听 addr 直到 ctx 取消，随后优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP 服务已启动", "address", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("HTTP 服务已停止")
	return nil
}
