package approval

import (
	"snagline/account"
	"snagline/bizerror"
	"snagline/common"
	"snagline/domain"
	"snagline/event"
	"snagline/persistence"
	"snagline/session"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ApproveWorkFunc = ApproveWork
	RejectWorkFunc  = RejectWork

	CountPendingApprovalFunc = CountPendingApproval
	CountApprovedFunc        = CountApproved
	CountRejectedFunc        = CountRejected
)

// ApproveWork accepts a completed work order. The comment is optional.
// There is intentionally no status precondition: approving an already
// approved order appends a second APPROVED block rather than failing.
//
// builder_notes is read-modify-write inside one transaction; two sessions
// deciding on the same order concurrently are last-write-wins on the text
// log. The events table row is insert-only and survives that race.
func ApproveWork(id types.ID, notes string, sec *session.Session) error {
	if !sec.HasAnyRole(account.RoleDeveloper, account.RoleAdmin) {
		return bizerror.ErrForbidden
	}
	notes = strings.TrimSpace(notes)
	now := types.CurrentTimestamp()

	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		order := domain.WorkOrder{}
		if err := tx.Where(&domain.WorkOrder{ID: id}).First(&order).Error; err != nil {
			return err
		}

		entry := ApprovalEntry(now, actorName(sec), notes)
		updatedNotes := AppendEntry(order.BuilderNotes, entry)
		if err := tx.Model(&domain.WorkOrder{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"builder_notes": updatedNotes,
				"status":        domain.StatusApproved,
				"updated_at":    now,
			}).Error; err != nil {
			return err
		}

		return event.CreateEvent(event.SourceTypeWorkOrder, id, order.Describe(), event.EventCategoryApproved,
			order.Status, domain.StatusApproved, notes, &sec.Identity, tx)
	})
}

// RejectWork returns a work order to the builder. The reason is mandatory;
// it becomes the rework instruction. Status goes back to in_progress, the
// REJECTED marker in the appended block is what the rejected views derive
// from.
func RejectWork(id types.ID, reason string, sec *session.Session) error {
	if !sec.HasAnyRole(account.RoleDeveloper, account.RoleAdmin) {
		return bizerror.ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return bizerror.ErrEmptyRejectReason
	}
	now := types.CurrentTimestamp()

	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		order := domain.WorkOrder{}
		if err := tx.Where(&domain.WorkOrder{ID: id}).First(&order).Error; err != nil {
			return err
		}

		entry := RejectionEntry(now, actorName(sec), reason)
		updatedNotes := AppendEntry(order.BuilderNotes, entry)
		if err := tx.Model(&domain.WorkOrder{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"builder_notes": updatedNotes,
				"status":        domain.StatusInProgress,
				"updated_at":    now,
			}).Error; err != nil {
			return err
		}

		return event.CreateEvent(event.SourceTypeWorkOrder, id, order.Describe(), event.EventCategoryRejected,
			order.Status, domain.StatusInProgress, reason, &sec.Identity, tx)
	})
}

func actorName(sec *session.Session) string {
	name := sec.Identity.DisplayName()
	if name == "" {
		return RoleDeveloper
	}
	return name
}

// Counters back the dashboard badges; any failure degrades to zero instead
// of breaking the page.

func CountPendingApproval(sec *session.Session) int {
	return countWorkOrders(sec, "status = ?", domain.StatusWaitingApproval)
}

func CountApproved(sec *session.Session) int {
	return countWorkOrders(sec, "status = ?", domain.StatusApproved)
}

func CountRejected(sec *session.Session) int {
	return countWorkOrders(sec, "builder_notes LIKE ? AND status = ?", "%"+RejectedMarker+"%", domain.StatusInProgress)
}

func countWorkOrders(sec *session.Session, query string, args ...interface{}) int {
	count := 0
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Model(&domain.WorkOrder{}).Where(query, args...).Count(&count).Error; err != nil {
		common.Log.Errorf("work order count failed: %v", err)
		return 0
	}
	return count
}
