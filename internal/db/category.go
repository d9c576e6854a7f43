package db

// Category 定义了分类模型，名称大小写不敏感唯一。
// 分类不持有文章列表，文章数量通过统计查询获得。
type Category struct {
	Model
	Name      string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	PostCount int64  `gorm:"->;-:migration" json:"postCount"`
}
