package models

import "time"

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SignUpIn struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpOut struct {
	Message string `json:"message"`
	UserID  uint   `json:"userId"`
}

type LogInIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserInfoOut struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type LogInOut struct {
	Message string      `json:"message"`
	User    UserInfoOut `json:"user"`
	Token   string      `json:"token"`
}
