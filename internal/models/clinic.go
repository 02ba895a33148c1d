package models

// Clinic is a place where a professional attends. Appointments reference it
// through their ClinicID.
type Clinic struct {
	BaseModel
	ProfessionalID string `gorm:"size:36;not null;index" json:"professionalId"`
	Name           string `gorm:"size:255;not null" json:"name"`
	CEP            string `gorm:"size:9;not null" json:"cep"`
	Street         string `gorm:"size:255;not null" json:"address"`
	Number         string `gorm:"size:20" json:"number"`
	Neighborhood   string `gorm:"size:255" json:"neighborhood"`
	City           string `gorm:"size:255;not null" json:"city"`
	State          string `gorm:"size:2;not null" json:"state"`
	Addition       string `gorm:"size:255" json:"addition,omitempty"`
}
