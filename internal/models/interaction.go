package models

// InteractionType classifies a note attached to an appointment.
type InteractionType string

const (
	InteractionMessage  InteractionType = "message"
	InteractionResponse InteractionType = "response"
	InteractionNote     InteractionType = "note"
)

// AppointmentInteraction is a note written by one party of an appointment.
type AppointmentInteraction struct {
	BaseModel
	AppointmentID string          `gorm:"size:36;not null;index" json:"appointmentId"`
	UserID        string          `gorm:"size:36;not null" json:"userId"`
	User          *User           `gorm:"foreignKey:UserID" json:"-"`
	Type          InteractionType `gorm:"size:20;not null" json:"type"`
	Content       string          `gorm:"type:text;not null" json:"content"`
}
