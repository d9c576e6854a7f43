package db

import "time"

// Booking 记录访客提交的预约
type Booking struct {
	Model
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;index;not null" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Service   string    `gorm:"size:100;not null" json:"service"`
	DateTime  time.Time `gorm:"index;not null" json:"dateTime"`
	Message   string    `gorm:"size:1000" json:"message"`
	Confirmed bool      `gorm:"index" json:"confirmed"`
}
