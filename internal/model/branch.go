package model

// Branch 网点
type Branch struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"type:varchar(100);not null" json:"name"`
	City    string `gorm:"type:varchar(100);not null" json:"city"`
	Address string `gorm:"type:varchar(200);not null" json:"address"`
	Phone   string `gorm:"type:varchar(20)" json:"phone"`
}

func (Branch) TableName() string {
	return "branches"
}

type BranchUpdate struct {
	Name    *string `json:"name"`
	City    *string `json:"city"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

func (u BranchUpdate) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.City != nil {
		cols["city"] = *u.City
	}
	if u.Address != nil {
		cols["address"] = *u.Address
	}
	if u.Phone != nil {
		cols["phone"] = *u.Phone
	}
	return cols
}
