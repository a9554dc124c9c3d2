package models

// IssueDetail содержит всё, что нужно для карточки задачи.
type IssueDetail struct {
	Issue      Issue         `json:"issue"`
	Comments   []CommentView `json:"comments"`
	Users      []User        `json:"users"`
	Labels     []Label       `json:"labels"`
	Milestones []Milestone   `json:"milestones"`
}

// CommentView описывает комментарий вместе с найденным автором (nil, если пользователи не загрузились).
type CommentView struct {
	Comment
	Author *User `json:"author"`
}

// IssueDetailResponse описывает ответ ручки карточки задачи.
type IssueDetailResponse struct {
	Detail   IssueDetail `json:"detail"`
	Warnings []string    `json:"warnings"`
	Partial  bool        `json:"partial"`
}
