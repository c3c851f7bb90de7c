package controller

import (
	"zplus_counselling_backend/internal/service"
	"zplus_counselling_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminTemplateController manages assessment templates. All routes sit
// behind the admin role middleware.
type AdminTemplateController struct {
	Templates *service.TemplateService
}

func NewAdminTemplateController(templates *service.TemplateService) *AdminTemplateController {
	return &AdminTemplateController{Templates: templates}
}

// Create godoc
// @Summary Create an assessment template
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateTemplateRequest true "template definition"
// @Success 201 {object} util.Response{data=model.AssessmentTemplate}
// @Failure 400 {object} util.Response
// @Router /api/v1/admin/templates [post]
func (c *AdminTemplateController) Create(ctx *gin.Context) {
	var req service.CreateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	t, err := c.Templates.CreateTemplate(req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, t)
}

// Update godoc
// @Summary Update an assessment template
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "template id"
// @Param body body service.UpdateTemplateRequest true "fields to update"
// @Success 200 {object} util.Response{data=model.AssessmentTemplate}
// @Failure 404 {object} util.Response
// @Router /api/v1/admin/templates/{id} [put]
func (c *AdminTemplateController) Update(ctx *gin.Context) {
	var req service.UpdateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	t, err := c.Templates.UpdateTemplate(ctx.Param("id"), req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, t)
}

// Get godoc
// @Summary Get a template including scoring internals
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "template id"
// @Success 200 {object} util.Response{data=model.AssessmentTemplate}
// @Failure 404 {object} util.Response
// @Router /api/v1/admin/templates/{id} [get]
func (c *AdminTemplateController) Get(ctx *gin.Context) {
	t, err := c.Templates.GetTemplate(ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, t)
}

// List godoc
// @Summary List templates, active and inactive
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "page" default(1)
// @Param limit query int false "limit" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/v1/admin/templates [get]
func (c *AdminTemplateController) List(ctx *gin.Context) {
	page, limit := pagination(ctx)

	ts, total, err := c.Templates.ListTemplates(page, limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: ts, Total: total, Page: page, Limit: limit})
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive godoc
// @Summary Activate or deactivate a template
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "template id"
// @Param body body setActiveRequest true "active flag"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/admin/templates/{id}/active [put]
func (c *AdminTemplateController) SetActive(ctx *gin.Context) {
	var req setActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Templates.SetTemplateActive(ctx.Param("id"), *req.Active); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"active": *req.Active})
}
