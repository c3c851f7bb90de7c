package controller

import (
	"strconv"

	"zplus_counselling_backend/internal/model"
	"zplus_counselling_backend/internal/service"
	"zplus_counselling_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CounselingController struct {
	Counseling *service.CounselingService
	Users      *service.UserService
}

func NewCounselingController(counseling *service.CounselingService, users *service.UserService) *CounselingController {
	return &CounselingController{Counseling: counseling, Users: users}
}

// ListCounselors godoc
// @Summary List available counselors
// @Tags counseling
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.User}
// @Router /api/v1/counseling/counselors [get]
func (c *CounselingController) ListCounselors(ctx *gin.Context) {
	counselors, err := c.Users.ListCounselors()
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, counselors)
}

// Book godoc
// @Summary Book a counselling session
// @Tags counseling
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.BookSessionRequest true "booking payload"
// @Success 201 {object} util.Response{data=model.CounselingSession}
// @Failure 400 {object} util.Response
// @Router /api/v1/counseling/sessions [post]
func (c *CounselingController) Book(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.BookSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.Counseling.BookSession(claims.UserID, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// Get godoc
// @Summary Get one counselling session
// @Tags counseling
// @Produce json
// @Security BearerAuth
// @Param id path string true "session id"
// @Success 200 {object} util.Response{data=model.CounselingSession}
// @Failure 404 {object} util.Response
// @Router /api/v1/counseling/sessions/{id} [get]
func (c *CounselingController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.Counseling.GetSession(ctx.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// ListMine godoc
// @Summary List the caller's counselling sessions
// @Tags counseling
// @Produce json
// @Security BearerAuth
// @Param page query int false "page" default(1)
// @Param limit query int false "limit" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/v1/counseling/sessions [get]
func (c *CounselingController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := pagination(ctx)

	var (
		sessions []model.CounselingSession
		total    int64
		err      error
	)
	if claims.Role == model.RoleCounselor {
		sessions, total, err = c.Counseling.ListCounselorSessions(claims.UserID, page, limit)
	} else {
		sessions, total, err = c.Counseling.ListUserSessions(claims.UserID, page, limit)
	}
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: sessions, Total: total, Page: page, Limit: limit})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Confirm, complete or cancel a session
// @Tags counseling
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "session id"
// @Param body body updateStatusRequest true "target status"
// @Success 200 {object} util.Response{data=model.CounselingSession}
// @Failure 403 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/v1/counseling/sessions/{id}/status [put]
func (c *CounselingController) UpdateStatus(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req updateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.Counseling.UpdateStatus(ctx.Param("id"), claims.UserID, model.CounselingStatus(req.Status))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// Feedback godoc
// @Summary Rate a completed session
// @Tags counseling
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "session id"
// @Param body body service.FeedbackRequest true "rating and feedback"
// @Success 200 {object} util.Response{data=model.CounselingSession}
// @Failure 422 {object} util.Response
// @Router /api/v1/counseling/sessions/{id}/feedback [post]
func (c *CounselingController) Feedback(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.Counseling.AddFeedback(ctx.Param("id"), claims.UserID, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

func pagination(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
