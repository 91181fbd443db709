package domain

import "time"

type Meme struct {
	Id          string    `json:"id"`
	ImageUrl    string    `json:"image_url"`
	Title       *string   `json:"title"`
	CreatorName *string   `json:"creator_name"`
	CreatedAt   time.Time `json:"created_at"`
}
