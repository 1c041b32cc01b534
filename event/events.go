package event

import (
	"snagline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

func CreateEvent(sourceType string, sourceId types.ID, sourceDesc string, category EventCategory,
	oldStatus, newStatus, reason string, identity *session.Identity, db *gorm.DB) error {

	record := EventRecord{
		Event: Event{
			SourceType: sourceType,
			SourceId:   sourceId,
			SourceDesc: sourceDesc,

			EventCategory: category,
			OldStatus:     oldStatus,
			NewStatus:     newStatus,
			Reason:        reason,

			CreatorId:   identity.ID,
			CreatorName: identity.DisplayName(),
		},
		Timestamp: types.CurrentTimestamp(),
	}
	return EventPersistCreateFunc(&record, db)
}
