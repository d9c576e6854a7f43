package db

// Tag 定义了标签模型。PostCount 仅在统计查询中填充。
type Tag struct {
	Model
	Name      string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	PostCount int64  `gorm:"->;-:migration" json:"postCount"`
}
