package model

import (
	"time"
)

// Client 银行客户，关联一个系统用户，可选归属网点
type Client struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Document  string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"document"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`
	Address   string    `gorm:"type:varchar(200)" json:"address"`
	Email     string    `gorm:"type:varchar(100)" json:"email"`
	UserID    int64     `gorm:"index" json:"user_id"`
	BranchID  *int64    `gorm:"index" json:"branch_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

type ClientUpdate struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Email    *string `json:"email"`
	BranchID *int64  `json:"branch_id"`
}

func (u ClientUpdate) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Phone != nil {
		cols["phone"] = *u.Phone
	}
	if u.Address != nil {
		cols["address"] = *u.Address
	}
	if u.Email != nil {
		cols["email"] = *u.Email
	}
	if u.BranchID != nil {
		cols["branch_id"] = *u.BranchID
	}
	return cols
}
