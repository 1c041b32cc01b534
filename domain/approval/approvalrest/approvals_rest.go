package approvalrest

import (
	"errors"
	"net/http"
	"snagline/attachment"
	"snagline/bizerror"
	"snagline/domain/approval"
	"snagline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterApprovalsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1", middleWares...)

	g.GET("pending-approvals", handleQueryPendingApprovals)
	g.GET("approved-work-orders", handleQueryApprovedWorkOrders)
	g.GET("rejected-work-orders", handleQueryRejectedWorkOrders)
	g.GET("approval-counters", handleQueryCounters)

	g.POST("work-orders/:id/approval", handleApprove)
	g.POST("work-orders/:id/rejection", handleReject)

	g.GET("work-orders/:id/files", handleQueryFiles)

	g.GET("portfolio", handleQueryPortfolio)
	g.GET("buildings", handleQueryBuildings)
	g.GET("buildings/:id/stats", handleQueryBuildingStats)
	g.GET("buildings/:id/work-orders", handleQueryBuildingWorkOrders)
	g.GET("trade-analytics", handleQueryTradeAnalytics)
	g.GET("approval-timeline", handleQueryApprovalTimeline)
}

// ListResponse carries the filtered rows plus the metric strip computed over
// the unfiltered result ("Showing X of Y").
type ListResponse struct {
	Summary approval.ListSummary `json:"summary"`
	Total   int                  `json:"total"`
	List    interface{}          `json:"list"`

	AvgApprovalHours *float64 `json:"avgApprovalHours,omitempty"`
}

type DecisionBody struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

type CountersBody struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func handleQueryPendingApprovals(c *gin.Context) {
	filter := bindFilter(c)
	details, err := approval.QueryPendingApprovalsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	filtered := filter.Apply(details)
	c.JSON(http.StatusOK, &ListResponse{Summary: approval.Summarize(details), Total: len(details), List: filtered})
}

func handleQueryApprovedWorkOrders(c *gin.Context) {
	filter := bindFilter(c)
	details, err := approval.QueryApprovedWorkOrdersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	filtered := filter.Apply(details)
	response := ListResponse{Summary: approval.Summarize(details), Total: len(details), List: filtered}
	if avg, ok := approval.AverageApprovalHours(details); ok {
		response.AvgApprovalHours = &avg
	}
	c.JSON(http.StatusOK, &response)
}

func handleQueryRejectedWorkOrders(c *gin.Context) {
	filter := bindFilter(c)
	rejected, err := approval.QueryRejectedWorkOrdersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	details := make([]approval.WorkOrderDetail, 0, len(rejected))
	for _, r := range rejected {
		details = append(details, r.WorkOrderDetail)
	}
	keep := map[types.ID]bool{}
	for _, d := range filter.Apply(details) {
		keep[d.ID] = true
	}
	filtered := make([]approval.RejectedWorkOrder, 0, len(rejected))
	for _, r := range rejected {
		if keep[r.ID] {
			filtered = append(filtered, r)
		}
	}
	c.JSON(http.StatusOK, &ListResponse{Summary: approval.Summarize(details), Total: len(rejected), List: filtered})
}

func handleQueryCounters(c *gin.Context) {
	sec := session.ExtractSessionFromGinContext(c)
	c.JSON(http.StatusOK, &CountersBody{
		Pending:  approval.CountPendingApprovalFunc(sec),
		Approved: approval.CountApprovedFunc(sec),
		Rejected: approval.CountRejectedFunc(sec),
	})
}

func handleApprove(c *gin.Context) {
	id := parseId(c)
	body := DecisionBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := approval.ApproveWorkFunc(id, body.Notes, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleReject(c *gin.Context) {
	id := parseId(c)
	body := DecisionBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := approval.RejectWorkFunc(id, body.Reason, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleQueryFiles(c *gin.Context) {
	id := parseId(c)
	files, err := attachment.ListFilesFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, files)
}

func handleQueryPortfolio(c *gin.Context) {
	overview, err := approval.QueryPortfolioFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, overview)
}

func handleQueryBuildings(c *gin.Context) {
	refs, err := approval.ListBuildings(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, refs)
}

func handleQueryBuildingStats(c *gin.Context) {
	id := parseId(c)
	stats, err := approval.QueryBuildingStatsFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, stats)
}

func handleQueryBuildingWorkOrders(c *gin.Context) {
	id := parseId(c)
	filter := bindFilter(c)
	details, err := approval.QueryBuildingWorkOrdersFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	filtered := filter.Apply(details)
	c.JSON(http.StatusOK, &ListResponse{Summary: approval.Summarize(details), Total: len(details), List: filtered})
}

func handleQueryTradeAnalytics(c *gin.Context) {
	rows, err := approval.QueryTradeAnalyticsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, rows)
}

func handleQueryApprovalTimeline(c *gin.Context) {
	points, err := approval.QueryApprovalTimelineFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, points)
}

func parseId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}

func bindFilter(c *gin.Context) approval.Filter {
	filter := approval.Filter{}
	if err := c.MustBindWith(&filter, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return filter
}
