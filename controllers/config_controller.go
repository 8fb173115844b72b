package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/dualfetch/config"
	"github.com/cppla/dualfetch/utils"
)

// ConfigController serves environment-driven settings the client pages need.
type ConfigController struct{}

func NewConfigController() *ConfigController { return &ConfigController{} }

// GetClientConfig returns the PostgREST endpoint and listing defaults.
func (c *ConfigController) GetClientConfig(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"postgrest_url":     cfg.PostgRESTURL,
		"postgrest_schema":  cfg.PostgRESTSchema,
		"default_page_size": cfg.DefaultPageSize,
	})
}
