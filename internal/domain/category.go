package domain

import "time"

type Category struct {
	ID        int64     `json:"categoryId"`
	Name      string    `json:"categoryName"`
	CreatedAt time.Time `json:"createdAt"`
}
