package db

// ContactMessage 保存联系表单提交的留言
type ContactMessage struct {
	Model
	Name    string `gorm:"size:100;not null" json:"name"`
	Email   string `gorm:"size:100;not null" json:"email"`
	Message string `gorm:"type:text;not null" json:"message"`
	IsRead  bool   `gorm:"index" json:"isRead"`
}

// TableName 指定自定义表名。
func (ContactMessage) TableName() string {
	return "contact_messages"
}
