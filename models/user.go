package models

type UserAccount struct {
	JsonModel
	Name         string `json:"name"`
	Email        string `json:"email" gorm:"unique;not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	Banned       bool   `gorm:"default:false" json:"-"`

	// Notifications settings
	ReceiveNotifications bool `gorm:"default:true" json:"receive_notifications"`
}

func (UserAccount) TableName() string {
	return "users"
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint        `gorm:"index"`
	UserAccount   UserAccount `json:"-"`
	Platform      Platform    `json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}

type UserPushIn struct {
	Token    string   `json:"token" validate:"required"`
	Platform Platform `json:"platform" validate:"required,platform"`
}
