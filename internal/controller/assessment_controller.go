package controller

import (
	"zplus_counselling_backend/internal/service"
	"zplus_counselling_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AssessmentController exposes the assessment lifecycle over HTTP. All
// routes require an authenticated user; ownership of sessions is enforced
// in the service layer.
type AssessmentController struct {
	Assessments *service.AssessmentService
}

func NewAssessmentController(assessments *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Assessments: assessments}
}

// ListAvailable godoc
// @Summary List available assessments
// @Description Active templates with the caller's completion status
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.AvailableAssessment}
// @Router /api/v1/assessments [get]
func (c *AssessmentController) ListAvailable(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	items, err := c.Assessments.GetAvailableAssessments(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// Start godoc
// @Summary Start an assessment session
// @Description Opens a session for the given test type; conflicts if one is in progress
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param testType path string true "test type, e.g. MBTI"
// @Success 201 {object} util.Response{data=service.StartAssessmentResponse}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/v1/assessments/{testType}/start [post]
func (c *AssessmentController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resp, err := c.Assessments.StartAssessment(claims.UserID, ctx.Param("testType"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, resp)
}

// Current godoc
// @Summary Resume the in-progress session for a test type
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param testType path string true "test type"
// @Success 200 {object} util.Response{data=service.SessionInfo}
// @Failure 404 {object} util.Response
// @Router /api/v1/assessments/{testType}/current [get]
func (c *AssessmentController) Current(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	info, err := c.Assessments.GetCurrentSession(claims.UserID, ctx.Param("testType"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, info)
}

// SubmitAnswer godoc
// @Summary Submit one answer
// @Description Records the answer for the current question and advances the session
// @Tags assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "session id"
// @Param body body service.SubmitAnswerRequest true "answer payload"
// @Success 200 {object} util.Response{data=service.SubmitAnswerResponse}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/v1/assessments/sessions/{sessionId}/answers [post]
func (c *AssessmentController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.Assessments.SubmitAnswer(ctx.Param("sessionId"), claims.UserID, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// Complete godoc
// @Summary Complete a session
// @Description Scores the session and returns the assembled result
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "session id"
// @Success 200 {object} util.Response{data=service.AssessmentResultResponse}
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/v1/assessments/sessions/{sessionId}/complete [post]
func (c *AssessmentController) Complete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resp, err := c.Assessments.CompleteSession(ctx.Param("sessionId"), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// Abandon godoc
// @Summary Abandon a session
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "session id"
// @Success 200 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/v1/assessments/sessions/{sessionId}/abandon [post]
func (c *AssessmentController) Abandon(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Assessments.AbandonSession(ctx.Param("sessionId"), claims.UserID); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"abandoned": true})
}

// History godoc
// @Summary Assessment session history
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.SessionInfo}
// @Router /api/v1/assessments/history [get]
func (c *AssessmentController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	history, err := c.Assessments.GetUserAssessmentHistory(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, history)
}
