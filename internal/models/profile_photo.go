package models

// ProfilePhoto stores a user's current profile picture as binary data in the
// database. Uploading a new photo replaces the previous row.
type ProfilePhoto struct {
	BaseModel
	UserID   string `gorm:"size:36;not null;uniqueIndex" json:"userId"`
	FileName string `gorm:"size:255;not null" json:"fileName"`
	FileType string `gorm:"size:100;not null" json:"fileType"` // sniffed MIME type
	FileData []byte `gorm:"not null" json:"-"`
	Size     int    `json:"size"`
}
