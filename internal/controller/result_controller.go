package controller

import (
	"zplus_counselling_backend/internal/service"
	"zplus_counselling_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	Assessments *service.AssessmentService
	Results     service.ResultStore
}

func NewResultController(assessments *service.AssessmentService) *ResultController {
	return &ResultController{Assessments: assessments, Results: assessments.Results}
}

// GetBySession godoc
// @Summary Get the result of a completed session
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "session id"
// @Success 200 {object} util.Response{data=service.AssessmentResultResponse}
// @Failure 404 {object} util.Response
// @Router /api/v1/results/{sessionId} [get]
func (c *ResultController) GetBySession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Assessments.GetAssessmentResult(ctx.Param("sessionId"), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListMine godoc
// @Summary List the caller's stored results
// @Tags results
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.TestResult}
// @Router /api/v1/results [get]
func (c *ResultController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.Results.FindByUser(claims.UserID)
	if err != nil {
		util.FromError(ctx, util.StorageError(err))
		return
	}
	util.Success(ctx, results)
}
