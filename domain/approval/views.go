package approval

import (
	"snagline/account"
	"snagline/bizerror"
	"snagline/domain"
	"snagline/persistence"
	"snagline/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	QueryPendingApprovalsFunc   = QueryPendingApprovals
	QueryApprovedWorkOrdersFunc = QueryApprovedWorkOrders
	QueryRejectedWorkOrdersFunc = QueryRejectedWorkOrders
)

// WorkOrderDetail is one row of the developer listings: a work order joined
// with its inspection's building.
type WorkOrderDetail struct {
	ID           types.ID `json:"id"`
	InspectionID types.ID `json:"inspectionId"`

	Unit      string `json:"unit"`
	Room      string `json:"room"`
	Component string `json:"component"`
	Trade     string `json:"trade"`
	Urgency   string `json:"urgency"`
	Notes     string `json:"notes"`

	Status       string `json:"status"`
	BuilderNotes string `json:"builderNotes"`

	StartedDate   types.Timestamp `json:"startedDate"`
	CompletedDate types.Timestamp `json:"completedDate"`
	PlannedDate   types.Timestamp `json:"plannedDate"`
	UpdatedAt     types.Timestamp `json:"updatedAt"`

	BuildingID   types.ID `json:"buildingId"`
	BuildingName string   `json:"buildingName"`

	// DisplayStatus shows "rejected" for derived-rejected rows.
	DisplayStatus string `json:"displayStatus" gorm:"-"`
}

type RejectedWorkOrder struct {
	WorkOrderDetail
	Rejection RejectionInfo `json:"rejection"`
}

const detailColumns = "wo.id, wo.inspection_id, wo.unit, wo.room, wo.component, wo.trade, wo.urgency, wo.notes, " +
	"wo.status, wo.builder_notes, wo.started_date, wo.completed_date, wo.planned_date, wo.updated_at, " +
	"b.id AS building_id, b.name AS building_name"

const urgencyOrder = "CASE wo.urgency WHEN 'Urgent' THEN 1 WHEN 'High Priority' THEN 2 ELSE 3 END"

func detailQuery(db *gorm.DB) *gorm.DB {
	return db.Table("inspector_work_orders wo").
		Select(detailColumns).
		Joins("JOIN inspector_inspections i ON wo.inspection_id = i.id").
		Joins("JOIN inspector_buildings b ON i.building_id = b.id")
}

// QueryPendingApprovals lists work waiting for a decision, most recently
// updated first, urgency as tie-break.
func QueryPendingApprovals(sec *session.Session) ([]WorkOrderDetail, error) {
	if !sec.HasAnyRole(account.RoleDeveloper, account.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	details := []WorkOrderDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := detailQuery(db).
		Where("wo.status = ?", domain.StatusWaitingApproval).
		Order("wo.updated_at DESC").
		Order(urgencyOrder).
		Scan(&details).Error
	if err != nil {
		return nil, err
	}
	decorateDisplayStatus(details)
	return details, nil
}

func QueryApprovedWorkOrders(sec *session.Session) ([]WorkOrderDetail, error) {
	if !sec.HasAnyRole(account.RoleDeveloper, account.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	details := []WorkOrderDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := detailQuery(db).
		Where("wo.status = ?", domain.StatusApproved).
		Order("wo.updated_at DESC").
		Scan(&details).Error
	if err != nil {
		return nil, err
	}
	decorateDisplayStatus(details)
	return details, nil
}

// QueryRejectedWorkOrders lists derived-rejected work: in_progress rows whose
// history carries the REJECTED marker. Each row includes the most recent
// rejection's actor, date and reason.
func QueryRejectedWorkOrders(sec *session.Session) ([]RejectedWorkOrder, error) {
	if !sec.HasAnyRole(account.RoleDeveloper, account.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	details := []WorkOrderDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := detailQuery(db).
		Where("wo.builder_notes LIKE ? AND wo.status = ?", "%"+RejectedMarker+"%", domain.StatusInProgress).
		Order("wo.updated_at DESC").
		Scan(&details).Error
	if err != nil {
		return nil, err
	}
	decorateDisplayStatus(details)

	rejected := make([]RejectedWorkOrder, 0, len(details))
	for _, d := range details {
		r := RejectedWorkOrder{WorkOrderDetail: d}
		if info, found := LatestRejection(d.BuilderNotes); found {
			r.Rejection = info
		} else {
			r.Rejection = RejectionInfo{By: RoleDeveloper, Reason: "No reason provided"}
		}
		rejected = append(rejected, r)
	}
	return rejected, nil
}

func decorateDisplayStatus(details []WorkOrderDetail) {
	for i := range details {
		if IsRejected(details[i].Status, details[i].BuilderNotes) {
			details[i].DisplayStatus = domain.StatusRejected
		} else {
			details[i].DisplayStatus = details[i].Status
		}
	}
}

// ListSummary is the metric strip above a listing.
type ListSummary struct {
	Total     int `json:"total"`
	Buildings int `json:"buildings"`
	Urgent    int `json:"urgent"`
	Trades    int `json:"trades"`
}

func Summarize(details []WorkOrderDetail) ListSummary {
	buildings := map[types.ID]bool{}
	trades := map[string]bool{}
	urgent := 0
	for _, d := range details {
		buildings[d.BuildingID] = true
		trades[d.Trade] = true
		if d.Urgency == domain.UrgencyUrgent {
			urgent++
		}
	}
	return ListSummary{Total: len(details), Buildings: len(buildings), Urgent: urgent, Trades: len(trades)}
}

// AverageApprovalHours is the mean latency between completion and approval,
// over rows where both timestamps exist and the difference is non-negative.
// The second return is false when no row qualifies.
func AverageApprovalHours(details []WorkOrderDetail) (float64, bool) {
	total := 0.0
	count := 0
	for _, d := range details {
		if d.CompletedDate.IsZero() || d.UpdatedAt.IsZero() {
			continue
		}
		hours := d.UpdatedAt.Time().Sub(d.CompletedDate.Time()).Hours()
		if hours < 0 {
			continue
		}
		total += hours
		count++
	}
	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}

// Filters compose by AND; "All" (or empty) is a no-op for each field. They
// are applied in memory after the join query, as the view layer selects them
// independently per request.
const (
	FilterAll = "All"

	DateRangeAllTime   = "All Time"
	DateRangeToday     = "Today"
	DateRangeThisWeek  = "This Week"
	DateRangeThisMonth = "This Month"
)

type Filter struct {
	Building  string `json:"building" form:"building"`
	Trade     string `json:"trade" form:"trade"`
	Urgency   string `json:"urgency" form:"urgency"`
	Unit      string `json:"unit" form:"unit"`
	Status    string `json:"status" form:"status"`
	DateRange string `json:"dateRange" form:"dateRange"`
}

func (f Filter) Apply(details []WorkOrderDetail) []WorkOrderDetail {
	return f.applyAt(time.Now(), details)
}

func (f Filter) applyAt(now time.Time, details []WorkOrderDetail) []WorkOrderDetail {
	filtered := []WorkOrderDetail{}
	for _, d := range details {
		if f.matchAt(now, d) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func (f Filter) matchAt(now time.Time, d WorkOrderDetail) bool {
	if active(f.Building) && d.BuildingName != f.Building {
		return false
	}
	if active(f.Trade) && d.Trade != f.Trade {
		return false
	}
	if active(f.Urgency) && d.Urgency != f.Urgency {
		return false
	}
	if active(f.Unit) && d.Unit != f.Unit {
		return false
	}
	if active(f.Status) && !matchStatus(f.Status, d) {
		return false
	}
	if active(f.DateRange) && f.DateRange != DateRangeAllTime && !matchDateRange(f.DateRange, now, d.UpdatedAt) {
		return false
	}
	return true
}

func active(value string) bool {
	return value != "" && value != FilterAll
}

// matchStatus treats the derived "rejected" value as a first-class filter and
// excludes derived-rejected rows from a plain "in_progress" filter.
func matchStatus(status string, d WorkOrderDetail) bool {
	rejected := IsRejected(d.Status, d.BuilderNotes)
	switch status {
	case domain.StatusRejected:
		return rejected
	case domain.StatusInProgress:
		return d.Status == domain.StatusInProgress && !rejected
	default:
		return d.Status == status
	}
}

func matchDateRange(dateRange string, now time.Time, updated types.Timestamp) bool {
	if updated.IsZero() {
		return false
	}
	t := updated.Time()
	switch dateRange {
	case DateRangeToday:
		y1, m1, d1 := now.Date()
		y2, m2, d2 := t.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case DateRangeThisWeek:
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		weekStart := now.AddDate(0, 0, -daysSinceMonday)
		return !t.Before(weekStart)
	case DateRangeThisMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
		return !t.Before(monthStart)
	default:
		return true
	}
}
