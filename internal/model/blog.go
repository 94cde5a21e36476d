package model

import "time"

// Group 结构体表示帖子所属的社区
type Group struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Post 结构体表示一篇帖子；Group 可为空（社区被删除后置空）
type Post struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	AuthorID  int       `json:"author_id"`
	GroupID   *int      `json:"group_id,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    *User     `json:"author,omitempty"`
	Group     *Group    `json:"group,omitempty"`
}

type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	AuthorID  int       `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Author    *User     `json:"author,omitempty"`
}

// Follow 表示关注关系的有向边：FollowerID 关注 AuthorID
type Follow struct {
	ID         int       `json:"id"`
	FollowerID int       `json:"follower_id"`
	AuthorID   int       `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
}
