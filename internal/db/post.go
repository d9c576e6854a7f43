package db

import "strings"

// PostStatus 表示文章的可见状态
type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPublished PostStatus = "PUBLISHED"
)

// ParsePostStatus 将输入规范化为已知状态，大小写不敏感。
func ParsePostStatus(raw string) (PostStatus, bool) {
	switch PostStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case PostStatusDraft:
		return PostStatusDraft, true
	case PostStatusPublished:
		return PostStatusPublished, true
	}
	return "", false
}

// Post 定义了文章模型。
// 作者与分类都是单向引用，分类/标签不反向持有文章。
type Post struct {
	Model
	Title       string     `gorm:"size:255;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Status      PostStatus `gorm:"size:16;index;not null" json:"status"`
	ReadingTime int        `json:"readingTime"`
	AuthorID    string     `gorm:"type:varchar(36);index;not null" json:"authorId"`
	Author      User       `json:"author"`
	CategoryID  string     `gorm:"type:varchar(36);index;not null" json:"categoryId"`
	Category    Category   `json:"category"`
	Tags        []Tag      `gorm:"many2many:post_tags;" json:"tags"`
}

// TagIDs 返回文章当前的标签 id 集合。
func (p *Post) TagIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(p.Tags))
	for _, tag := range p.Tags {
		ids[tag.ID] = struct{}{}
	}
	return ids
}
