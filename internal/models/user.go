package models

import "time"

// User описывает сущность пользователя.
type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Image     *string    `json:"image"`
	CreatedAt *time.Time `json:"createdAt"`
}

// PostUserJSONBody описывает тело запроса создания пользователя.
type PostUserJSONBody struct {
	Name  string  `json:"name" validate:"required,max=50"`
	Image *string `json:"image" validate:"omitempty,max=255"`
}

// FindUser ищет пользователя по идентификатору в срезе.
func FindUser(users []User, id int64) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}
