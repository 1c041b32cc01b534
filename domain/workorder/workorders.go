package workorder

import (
	"snagline/account"
	"snagline/bizerror"
	"snagline/common"
	"snagline/domain"
	"snagline/domain/approval"
	"snagline/event"
	"snagline/persistence"
	"snagline/session"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	workOrderIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateWorkOrderFunc   = CreateWorkOrder
	StartWorkFunc         = StartWork
	SubmitForApprovalFunc = SubmitForApproval
)

type WorkOrderCreation struct {
	InspectionID types.ID `json:"inspectionId" binding:"required"`

	Unit      string `json:"unit" binding:"required"`
	Room      string `json:"room" binding:"required"`
	Component string `json:"component" binding:"required"`
	Trade     string `json:"trade" binding:"required"`
	Urgency   string `json:"urgency" binding:"required,oneof='Urgent' 'High Priority' 'Medium Priority' 'Low Priority'"`
	Notes     string `json:"notes"`

	PlannedDate types.Timestamp `json:"plannedDate"`
}

// CreateWorkOrder registers an inspection finding as a pending work order.
func CreateWorkOrder(c *WorkOrderCreation, sec *session.Session) (*domain.WorkOrder, error) {
	if !sec.HasAnyRole(account.RoleInspector, account.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	now := types.CurrentTimestamp()
	order := domain.WorkOrder{
		ID:           common.NextId(workOrderIdWorker),
		InspectionID: c.InspectionID,
		Unit:         c.Unit,
		Room:         c.Room,
		Component:    c.Component,
		Trade:        c.Trade,
		Urgency:      c.Urgency,
		Notes:        c.Notes,
		Status:       domain.StatusPending,
		PlannedDate:  c.PlannedDate,
		UpdatedAt:    now,
	}

	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		inspection := domain.Inspection{}
		if err := tx.Where(&domain.Inspection{ID: c.InspectionID}).First(&inspection).Error; err != nil {
			return err
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return event.CreateEvent(event.SourceTypeWorkOrder, order.ID, order.Describe(), event.EventCategoryCreated,
			"", domain.StatusPending, "", &sec.Identity, tx)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// StartWork moves a pending work order into progress.
func StartWork(id types.ID, sec *session.Session) error {
	if !sec.HasAnyRole(account.RoleBuilder, account.RoleAdmin) {
		return bizerror.ErrForbidden
	}
	now := types.CurrentTimestamp()

	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		order := domain.WorkOrder{}
		if err := tx.Where(&domain.WorkOrder{ID: id}).First(&order).Error; err != nil {
			return err
		}
		if !domain.WorkOrderStateMachine.LegalTransition(order.Status, domain.StatusInProgress) {
			return bizerror.ErrInvalidStatus
		}

		db := tx.Model(&domain.WorkOrder{}).Where("id = ? AND status = ?", id, order.Status).
			Updates(map[string]interface{}{
				"status":       domain.StatusInProgress,
				"started_date": now,
				"updated_at":   now,
			})
		if err := db.Error; err != nil {
			return err
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrInvalidStatus
		}

		return event.CreateEvent(event.SourceTypeWorkOrder, id, order.Describe(), event.EventCategoryStarted,
			order.Status, domain.StatusInProgress, "", &sec.Identity, tx)
	})
}

// SubmitForApproval hands completed work to the developer. The completion
// notes become a history block so the reviewer sees what was done; the
// planned date is kept when the builder set one.
func SubmitForApproval(id types.ID, notes string, planned types.Timestamp, sec *session.Session) error {
	if !sec.HasAnyRole(account.RoleBuilder, account.RoleAdmin) {
		return bizerror.ErrForbidden
	}
	notes = strings.TrimSpace(notes)
	now := types.CurrentTimestamp()

	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		order := domain.WorkOrder{}
		if err := tx.Where(&domain.WorkOrder{ID: id}).First(&order).Error; err != nil {
			return err
		}
		if !domain.WorkOrderStateMachine.LegalTransition(order.Status, domain.StatusWaitingApproval) {
			return bizerror.ErrInvalidStatus
		}

		entry := approval.SubmissionEntry(now, sec.Identity.DisplayName(), notes, planned)
		updates := map[string]interface{}{
			"builder_notes":  approval.AppendEntry(order.BuilderNotes, entry),
			"status":         domain.StatusWaitingApproval,
			"completed_date": now,
			"updated_at":     now,
		}
		if !planned.IsZero() {
			updates["planned_date"] = planned
		}

		db := tx.Model(&domain.WorkOrder{}).Where("id = ? AND status = ?", id, order.Status).Updates(updates)
		if err := db.Error; err != nil {
			return err
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrInvalidStatus
		}

		return event.CreateEvent(event.SourceTypeWorkOrder, id, order.Describe(), event.EventCategorySubmitted,
			order.Status, domain.StatusWaitingApproval, notes, &sec.Identity, tx)
	})
}
