package event

import (
	"github.com/fundwit/go-commons/types"
)

const (
	SourceTypeWorkOrder = "work_order"

	EventCategoryCreated   EventCategory = "CREATED"
	EventCategoryStarted   EventCategory = "STARTED"
	EventCategorySubmitted EventCategory = "SUBMITTED"
	EventCategoryApproved  EventCategory = "APPROVED"
	EventCategoryRejected  EventCategory = "REJECTED"
)

type EventCategory string

// Event is one structured audit row per work-order transition. Unlike the
// legacy builder_notes text log these rows are insert-only, so concurrent
// reviewers cannot overwrite each other's trail.
type Event struct {
	SourceId   types.ID `json:"sourceId"`
	SourceType string   `json:"sourceType"`
	SourceDesc string   `json:"sourceDesc"`

	CreatorId   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	EventCategory EventCategory `json:"eventCategory"`
	OldStatus     string        `json:"oldStatus"`
	NewStatus     string        `json:"newStatus"`
	Reason        string        `json:"reason" sql:"type:TEXT"`
}

type EventRecord struct {
	Event

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
}

func (r *EventRecord) TableName() string {
	return "events"
}
