package models

// Label описывает метку задачи.
type Label struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// PostLabelJSONBody описывает тело запроса создания или изменения метки.
type PostLabelJSONBody struct {
	Title       string `json:"title" validate:"required,max=50"`
	Description string `json:"description" validate:"max=255"`
	Color       string `json:"color" validate:"required,hexcolor"`
}
