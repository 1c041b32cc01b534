package workorderrest

import (
	"errors"
	"net/http"
	"snagline/bizerror"
	"snagline/domain/workorder"
	"snagline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterWorkOrdersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/work-orders", middleWares...)

	g.POST("", handleCreateWorkOrder)
	g.POST(":id/start", handleStartWork)
	g.POST(":id/submission", handleSubmitForApproval)
}

type SubmissionBody struct {
	Notes       string          `json:"notes"`
	PlannedDate types.Timestamp `json:"plannedDate"`
}

func handleCreateWorkOrder(c *gin.Context) {
	creation := workorder.WorkOrderCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	order, err := workorder.CreateWorkOrderFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, order)
}

func handleStartWork(c *gin.Context) {
	id := parseId(c)
	if err := workorder.StartWorkFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleSubmitForApproval(c *gin.Context) {
	id := parseId(c)
	body := SubmissionBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := workorder.SubmitForApprovalFunc(id, body.Notes, body.PlannedDate, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func parseId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}
