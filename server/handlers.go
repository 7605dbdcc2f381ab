package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/Wsine/picgo-helper/core"
	"github.com/Wsine/picgo-helper/picgo"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleGetConfig(c *gin.Context) {
	path := c.Query("path")
	v := s.store.Get(path, nil)
	if v == nil && path != "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "配置项不存在", "path": path})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "value": v})
}

// handleSaveConfig 接受有序数组 [{path, value}] 或对象 {path: value}
func (s *Server) handleSaveConfig(c *gin.Context) {
	var raw any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "无效的请求体: " + err.Error()})
		return
	}

	var patch core.Patch
	switch body := raw.(type) {
	case map[string]any:
		patch = core.PatchOf(body)
	case []any:
		for _, item := range body {
			obj, ok := item.(map[string]any)
			path, _ := obj["path"].(string)
			if !ok || path == "" {
				c.JSON(http.StatusBadRequest, gin.H{"message": "数组元素必须是 {path, value}"})
				return
			}
			patch = append(patch, core.Entry{Path: path, Value: obj["value"]})
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "请求体必须是对象或数组"})
		return
	}

	if err := s.store.Save(patch); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": len(patch)})
}

func (s *Server) handleUnsetConfig(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "缺少 path 参数"})
		return
	}
	if !s.store.Unset(path) {
		c.JSON(http.StatusNotFound, gin.H{"message": "配置项不存在", "path": path})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListBackends(c *gin.Context) {
	if c.Query("visible") == "true" {
		c.JSON(http.StatusOK, s.store.ListVisibleBackendTypes())
		return
	}
	c.JSON(http.StatusOK, s.store.ListBackendTypes())
}

func (s *Server) handleGetActiveBackend(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"type": s.store.ActiveBackendType()})
}

func (s *Server) handleSetActiveBackend(c *gin.Context) {
	var payload struct {
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "缺少 type"})
		return
	}
	if err := s.store.SetActiveBackendType(payload.Type); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": payload.Type})
}

func (s *Server) handleSetVisible(c *gin.Context) {
	var payload struct {
		Visible *bool `json:"visible" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "缺少 visible"})
		return
	}
	backend := c.Param("type")
	if err := s.store.SetBackendVisible(backend, *payload.Visible); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, core.ErrUnknownBackend) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": backend, "visible": *payload.Visible})
}

func (s *Server) handleListProfiles(c *gin.Context) {
	cfg, err := s.store.Profiles(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// handleUpsertProfile POST 新建，PUT 按 id 更新（id 不存在时同样新建）
func (s *Server) handleUpsertProfile(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "无效的配置数据: " + err.Error()})
		return
	}
	profile, err := s.store.UpsertProfile(c.Param("type"), c.Param("id"), fields)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleDeleteProfile(c *gin.Context) {
	cfg, err := s.store.DeleteProfile(c.Param("type"), c.Param("id"))
	switch {
	case errors.Is(err, core.ErrLastProfile):
		c.JSON(http.StatusConflict, gin.H{"message": "至少保留一个配置"})
	case errors.Is(err, core.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "配置不存在"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusOK, cfg)
	}
}

func (s *Server) handleSelectProfile(c *gin.Context) {
	profile, ok := s.store.SelectProfile(c.Param("type"), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "配置不存在"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleTestProfile(c *gin.Context) {
	if s.checker == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"message": "未启用凭据测试"})
		return
	}
	backend := c.Param("type")
	cfg, err := s.store.Profiles(backend)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	i := cfg.Find(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "配置不存在"})
		return
	}
	c.JSON(http.StatusOK, s.checker.Check(c.Request.Context(), backend, cfg.ConfigList[i]))
}

func (s *Server) handleGetTransformer(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": s.store.ActiveTransformer()})
}

func (s *Server) handleSetTransformer(c *gin.Context) {
	var payload struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "缺少 name"})
		return
	}
	if err := s.store.SetActiveTransformer(payload.Name); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": payload.Name})
}

type pluginOp func(ctx context.Context, names []string) core.PluginResult

// handlePluginOp 插件操作同步执行，结果同时通过 /ws 推送
func (s *Server) handlePluginOp(op pluginOp) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload struct {
			Names []string `json:"names" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "缺少 names"})
			return
		}
		names := make([]string, len(payload.Names))
		for i, name := range payload.Names {
			names[i] = picgo.FullPluginName(name)
		}
		res := op(c.Request.Context(), names)
		status := http.StatusOK
		if !res.Success {
			status = http.StatusBadGateway
		}
		c.JSON(status, res)
	}
}

func (s *Server) handleTogglePlugin(c *gin.Context) {
	var payload struct {
		Name    string `json:"name" binding:"required"`
		Enabled *bool  `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "缺少 name 或 enabled"})
		return
	}
	name := picgo.FullPluginName(payload.Name)
	if err := s.plugins.Toggle(name, *payload.Enabled); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "enabled": *payload.Enabled})
}
