package model

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
)

// User 買家/賣家, 由註冊流程建立, 此核心只讀
// 不做硬刪除
type User struct {
	ID           int64  `gorm:"column:user_id;primaryKey" json:"id"`
	Name         string `gorm:"not null;type:varchar(100)" json:"name"`
	Email        string `gorm:"uniqueIndex;not null;type:varchar(100)" json:"email"`
	Role         Role   `gorm:"not null;type:varchar(16)" json:"role"`
	PasswordHash string `gorm:"not null;type:varchar(255)" json:"-"`
	Phone        string `gorm:"type:varchar(50)" json:"phone"`
	Address      string `gorm:"type:varchar(255)" json:"address"`
	City         string `gorm:"type:varchar(100)" json:"city"`
	State        string `gorm:"type:varchar(100)" json:"state"`
	ZipCode      string `gorm:"type:varchar(20)" json:"zipCode"`
	Country      string `gorm:"type:varchar(100)" json:"country"`
	BaseModel
}
