package approval

import (
	"snagline/account"
	"snagline/bizerror"
	"snagline/persistence"
	"snagline/session"

	"github.com/fundwit/go-commons/types"
)

var (
	QueryPortfolioFunc          = QueryPortfolio
	QueryBuildingStatsFunc      = QueryBuildingStats
	QueryBuildingWorkOrdersFunc = QueryBuildingWorkOrders
	QueryTradeAnalyticsFunc     = QueryTradeAnalytics
	QueryApprovalTimelineFunc   = QueryApprovalTimeline
)

type BuildingSummary struct {
	BuildingID   types.ID `json:"buildingId"`
	BuildingName string   `json:"buildingName"`

	TotalWorkOrders int `json:"totalWorkOrders"`
	Pending         int `json:"pending"`
	InProgress      int `json:"inProgress"`
	WaitingApproval int `json:"waitingApproval"`
	Approved        int `json:"approved"`
	UrgentCount     int `json:"urgentCount"`

	CompletionPct float64 `json:"completionPct" gorm:"-"`
}

type PortfolioOverview struct {
	Buildings []BuildingSummary `json:"buildings"`

	TotalBuildings   int     `json:"totalBuildings"`
	TotalWorkOrders  int     `json:"totalWorkOrders"`
	AwaitingApproval int     `json:"awaitingApproval"`
	UrgentItems      int     `json:"urgentItems"`
	CompletionRate   float64 `json:"completionRate"`
}

// QueryPortfolio rolls up work-order state per building, buildings with the
// most waiting/urgent work first.
func QueryPortfolio(sec *session.Session) (*PortfolioOverview, error) {
	if !sec.HasAnyRole(account.RoleDeveloper, account.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	rows := []BuildingSummary{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Raw(`SELECT
			b.id AS building_id,
			b.name AS building_name,
			COUNT(DISTINCT wo.id) AS total_work_orders,
			COUNT(CASE WHEN wo.status = 'pending' THEN 1 END) AS pending,
			COUNT(CASE WHEN wo.status = 'in_progress' THEN 1 END) AS in_progress,
			COUNT(CASE WHEN wo.status = 'waiting_approval' THEN 1 END) AS waiting_approval,
			COUNT(CASE WHEN wo.status = 'approved' THEN 1 END) AS approved,
			COUNT(CASE WHEN wo.urgency = 'Urgent' THEN 1 END) AS urgent_count
		FROM inspector_buildings b
		LEFT JOIN inspector_inspections i ON b.id = i.building_id
		LEFT JOIN inspector_work_orders wo ON i.id = wo.inspection_id
		GROUP BY b.id, b.name
		HAVING COUNT(DISTINCT wo.id) > 0
		ORDER BY waiting_approval DESC, urgent_count DESC`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	overview := PortfolioOverview{Buildings: rows, TotalBuildings: len(rows)}
	totalApproved := 0
	for i := range rows {
		rows[i].CompletionPct = percentage(rows[i].Approved, rows[i].TotalWorkOrders)
		overview.TotalWorkOrders += rows[i].TotalWorkOrders
		overview.AwaitingApproval += rows[i].WaitingApproval
		overview.UrgentItems += rows[i].UrgentCount
		totalApproved += rows[i].Approved
	}
	overview.CompletionRate = percentage(totalApproved, overview.TotalWorkOrders)
	return &overview, nil
}

type BuildingStats struct {
	TotalItems      int `json:"totalItems"`
	Pending         int `json:"pending"`
	InProgress      int `json:"inProgress"`
	Rejected        int `json:"rejected"`
	WaitingApproval int `json:"waitingApproval"`
	Approved        int `json:"approved"`
	Urgent          int `json:"urgent"`
	AffectedUnits   int `json:"affectedUnits"`
	TradesInvolved  int `json:"tradesInvolved"`

	CompletionRate float64 `json:"completionRate" gorm:"-"`
}

// QueryBuildingStats separates derived-rejected from plain in_progress, so
// the two never double-count.
func QueryBuildingStats(buildingID types.ID, sec *session.Session) (*BuildingStats, error) {
	if !sec.HasAnyRole(account.RoleDeveloper, account.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	stats := BuildingStats{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Raw(`SELECT
			COUNT(wo.id) AS total_items,
			COUNT(CASE WHEN wo.status = 'pending' THEN 1 END) AS pending,
			COUNT(CASE WHEN wo.status = 'in_progress' AND (wo.builder_notes NOT LIKE '%REJECTED%' OR wo.builder_notes IS NULL) THEN 1 END) AS in_progress,
			COUNT(CASE WHEN wo.status = 'in_progress' AND wo.builder_notes LIKE '%REJECTED%' THEN 1 END) AS rejected,
			COUNT(CASE WHEN wo.status = 'waiting_approval' THEN 1 END) AS waiting_approval,
			COUNT(CASE WHEN wo.status = 'approved' THEN 1 END) AS approved,
			COUNT(CASE WHEN wo.urgency = 'Urgent' THEN 1 END) AS urgent,
			COUNT(DISTINCT wo.unit) AS affected_units,
			COUNT(DISTINCT wo.trade) AS trades_involved
		FROM inspector_inspections i
		JOIN inspector_work_orders wo ON i.id = wo.inspection_id
		WHERE i.building_id = ?`, buildingID).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	stats.CompletionRate = percentage(stats.Approved, stats.TotalItems)
	return &stats, nil
}

// QueryBuildingWorkOrders lists one building's work orders, attention-needing
// statuses first, then urgency, then unit.
func QueryBuildingWorkOrders(buildingID types.ID, sec *session.Session) ([]WorkOrderDetail, error) {
	if !sec.HasAnyRole(account.RoleDeveloper, account.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	details := []WorkOrderDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := detailQuery(db).
		Where("i.building_id = ?", buildingID).
		Order(`CASE wo.status
			WHEN 'waiting_approval' THEN 1
			WHEN 'in_progress' THEN 2
			WHEN 'pending' THEN 3
			ELSE 4 END`).
		Order(urgencyOrder).
		Order("wo.unit").
		Scan(&details).Error
	if err != nil {
		return nil, err
	}
	decorateDisplayStatus(details)
	return details, nil
}

type BuildingRef struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
}

// ListBuildings returns the buildings that have at least one work order.
func ListBuildings(sec *session.Session) ([]BuildingRef, error) {
	if !sec.HasAnyRole(account.RoleDeveloper, account.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	refs := []BuildingRef{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Raw(`SELECT DISTINCT b.id, b.name
		FROM inspector_buildings b
		JOIN inspector_inspections i ON b.id = i.building_id
		JOIN inspector_work_orders wo ON i.id = wo.inspection_id
		ORDER BY b.name`).Scan(&refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}

type TradeStats struct {
	Trade    string `json:"trade"`
	Total    int    `json:"total"`
	Approved int    `json:"approved"`
	Waiting  int    `json:"waiting"`

	UrgentPct     float64 `json:"urgentPct"`
	CompletionPct float64 `json:"completionPct" gorm:"-"`
}

func QueryTradeAnalytics(sec *session.Session) ([]TradeStats, error) {
	if !sec.HasAnyRole(account.RoleDeveloper, account.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	rows := []TradeStats{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Raw(`SELECT
			wo.trade,
			COUNT(wo.id) AS total,
			COUNT(CASE WHEN wo.status = 'approved' THEN 1 END) AS approved,
			COUNT(CASE WHEN wo.status = 'waiting_approval' THEN 1 END) AS waiting,
			AVG(CASE WHEN wo.urgency = 'Urgent' THEN 1.0 ELSE 0.0 END) * 100 AS urgent_pct
		FROM inspector_work_orders wo
		GROUP BY wo.trade
		HAVING COUNT(wo.id) > 0
		ORDER BY total DESC`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].CompletionPct = percentage(rows[i].Approved, rows[i].Total)
	}
	return rows, nil
}

type TimelinePoint struct {
	Date          string `json:"date"`
	ApprovedCount int    `json:"approvedCount"`
}

// QueryApprovalTimeline returns approvals per day over the 30 most recent
// active days.
func QueryApprovalTimeline(sec *session.Session) ([]TimelinePoint, error) {
	if !sec.HasAnyRole(account.RoleDeveloper, account.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	points := []TimelinePoint{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Raw(`SELECT
			DATE(wo.updated_at) AS date,
			COUNT(CASE WHEN wo.status = 'approved' THEN 1 END) AS approved_count
		FROM inspector_work_orders wo
		WHERE wo.updated_at != ?
		GROUP BY DATE(wo.updated_at)
		ORDER BY date DESC
		LIMIT 30`, types.Timestamp{}).Scan(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

func percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
