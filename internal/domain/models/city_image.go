package models

type CityImage struct {
	ID        int64  `json:"id"`
	Country   string `json:"country"`
	City      string `json:"city"`
	ImageURL  string `json:"image_url"`
	Caption   string `json:"caption"`
	SortOrder int    `json:"sort_order"`
}

type CityImagePayload struct {
	Country   string `json:"country" binding:"required"`
	City      string `json:"city" binding:"required"`
	ImageURL  string `json:"image_url" binding:"required"`
	Caption   string `json:"caption"`
	SortOrder int    `json:"sort_order"`
}
