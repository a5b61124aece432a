package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 外部實體共用欄位, 只做軟刪除
type BaseModel struct {
	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
