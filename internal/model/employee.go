package model

import (
	"time"
)

type Employee struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Position  string    `gorm:"type:varchar(100);not null" json:"position"`
	BranchID  int64     `gorm:"index" json:"branch_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

type EmployeeUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Position  *string `json:"position"`
	BranchID  *int64  `json:"branch_id"`
}

func (u EmployeeUpdate) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.FirstName != nil {
		cols["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		cols["last_name"] = *u.LastName
	}
	if u.Position != nil {
		cols["position"] = *u.Position
	}
	if u.BranchID != nil {
		cols["branch_id"] = *u.BranchID
	}
	return cols
}
