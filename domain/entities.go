package domain

import (
	"github.com/fundwit/go-commons/types"
)

type Building struct {
	ID         types.ID        `json:"id" gorm:"primary_key"`
	Name       string          `json:"name"`
	Address    string          `json:"address"`
	TotalUnits int             `json:"totalUnits"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (b *Building) TableName() string {
	return "inspector_buildings"
}

type Inspection struct {
	ID            types.ID        `json:"id" gorm:"primary_key"`
	BuildingID    types.ID        `json:"buildingId"`
	InspectorName string          `json:"inspectorName"`
	Status        string          `json:"status"`
	StartTime     types.Timestamp `json:"startTime" sql:"type:DATETIME(6)"`
	EndTime       types.Timestamp `json:"endTime" sql:"type:DATETIME(6)"`
}

func (i *Inspection) TableName() string {
	return "inspector_inspections"
}

// WorkOrder is a single trade-specific remediation task tied to one
// inspection finding. BuilderNotes is the append-only textual history that
// doubles as the approval audit trail; see the approval package for the
// entry format and the rejection derivation rule.
type WorkOrder struct {
	ID           types.ID `json:"id" gorm:"primary_key"`
	InspectionID types.ID `json:"inspectionId"`

	Unit      string `json:"unit"`
	Room      string `json:"room"`
	Component string `json:"component"`
	Trade     string `json:"trade"`
	Urgency   string `json:"urgency"`
	Notes     string `json:"notes" sql:"type:TEXT"`

	Status       string `json:"status"`
	BuilderNotes string `json:"builderNotes" sql:"type:TEXT"`

	StartedDate   types.Timestamp `json:"startedDate" sql:"type:DATETIME(6)"`
	CompletedDate types.Timestamp `json:"completedDate" sql:"type:DATETIME(6)"`
	PlannedDate   types.Timestamp `json:"plannedDate" sql:"type:DATETIME(6)"`
	UpdatedAt     types.Timestamp `json:"updatedAt" sql:"type:DATETIME(6)"`
}

func (wo *WorkOrder) TableName() string {
	return "inspector_work_orders"
}

func (wo *WorkOrder) Describe() string {
	return "Unit " + wo.Unit + ", " + wo.Room + ", " + wo.Component + " (" + wo.Trade + ")"
}
