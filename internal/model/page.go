package model

// Page 表示一页分页后的帖子列表
type Page struct {
	Items       []*Post `json:"items"`
	Number      int     `json:"number"`
	TotalItems  int     `json:"total_items"`
	TotalPages  int     `json:"total_pages"`
	HasNext     bool    `json:"has_next"`
	HasPrevious bool    `json:"has_previous"`
}
