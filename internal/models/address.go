package models

// Address is one of the caller's saved addresses. At most one per user is primary.
type Address struct {
	BaseModel
	UserID       string `gorm:"size:36;not null;index" json:"userId"`
	Name         string `gorm:"size:100" json:"name"`
	CEP          string `gorm:"size:9;not null" json:"cep"`
	Street       string `gorm:"size:255;not null" json:"address"`
	Number       string `gorm:"size:20" json:"number"`
	Neighborhood string `gorm:"size:255" json:"neighborhood"`
	City         string `gorm:"size:255;not null" json:"city"`
	State        string `gorm:"size:2;not null" json:"state"`
	Addition     string `gorm:"size:255" json:"addition,omitempty"`
	Primary      bool   `gorm:"column:is_primary;default:false" json:"primary"`
}
