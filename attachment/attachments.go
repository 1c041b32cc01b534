package attachment

import (
	"os"
	"snagline/common"
	"snagline/persistence"
	"snagline/session"
	"strings"

	"github.com/fundwit/go-commons/types"
)

// WorkOrderFile is an optional side table written by an out-of-scope upload
// path. It may not exist at all in older databases; every read probes for it
// first. work_order_id is stored as text, matching the legacy rows.
type WorkOrderFile struct {
	ID               types.ID        `json:"id" gorm:"primary_key"`
	WorkOrderID      string          `json:"workOrderId"`
	OriginalFilename string          `json:"originalFilename"`
	FilePath         string          `json:"filePath"`
	FileType         string          `json:"fileType"`
	UploadedAt       types.Timestamp `json:"uploadedAt" sql:"type:DATETIME(6)"`
}

func (f *WorkOrderFile) TableName() string {
	return "work_order_files"
}

const (
	KindImage    = "image"
	KindDocument = "document"

	StatusOK      = "ok"
	StatusMissing = "missing"
	StatusNoPath  = "no path"
)

type FileInfo struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Type   string `json:"type"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
}

var (
	CountFilesFunc = CountFiles
	ListFilesFunc  = ListFiles
)

// CountFiles degrades to zero on a missing table or any storage fault; an
// attachment badge must never break the view it decorates.
func CountFiles(workOrderID types.ID, sec *session.Session) int {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if !db.HasTable(&WorkOrderFile{}) {
		return 0
	}
	count := 0
	if err := db.Model(&WorkOrderFile{}).Where("work_order_id = ?", workOrderID.String()).Count(&count).Error; err != nil {
		common.Log.Errorf("work order file count failed: %v", err)
		return 0
	}
	return count
}

// ListFiles returns the attachment rows of one work order, newest upload
// first. A missing path or a path that no longer exists on disk degrades the
// row's status instead of failing the listing.
func ListFiles(workOrderID types.ID, sec *session.Session) ([]FileInfo, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if !db.HasTable(&WorkOrderFile{}) {
		return []FileInfo{}, nil
	}
	rows := []WorkOrderFile{}
	if err := db.Where("work_order_id = ?", workOrderID.String()).
		Order("uploaded_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	infos := make([]FileInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, classify(row))
	}
	return infos, nil
}

func classify(row WorkOrderFile) FileInfo {
	info := FileInfo{Name: row.OriginalFilename, Type: row.FileType, Kind: KindDocument}
	if strings.Contains(strings.ToLower(row.FileType), "image") {
		info.Kind = KindImage
	}
	if info.Name == "" {
		if info.Kind == KindImage {
			info.Name = "Image"
		} else {
			info.Name = "File"
		}
	}

	// legacy rows hold literal "NULL"/"None" strings for absent paths
	if row.FilePath == "" || row.FilePath == "NULL" || row.FilePath == "None" {
		info.Status = StatusNoPath
		return info
	}
	if _, err := os.Stat(row.FilePath); err != nil {
		info.Status = StatusMissing
		return info
	}
	info.Path = row.FilePath
	info.Status = StatusOK
	return info
}
