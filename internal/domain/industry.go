package domain

import (
	"time"

	"github.com/google/uuid"
)

// BusinessIndustry is reference data picked when a business registers.
type BusinessIndustry struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	MarketValue *float64  `json:"market_value"`
	Image       *string   `json:"image"`
	CreatorID   uuid.UUID `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BusinessIndustryCreate struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	MarketValue *float64 `json:"market_value,omitempty"`
	Image       *string  `json:"image,omitempty"`
}

func (c BusinessIndustryCreate) Validate() error {
	var v ValidationErrors
	v.requireText("title", c.Title, 255)
	v.optionalText("description", c.Description, 255)
	v.optionalText("image", c.Image, 255)
	if c.MarketValue != nil && *c.MarketValue < 0 {
		v.add("market_value", "ensure this value is greater than or equal to 0")
	}
	return v.Err()
}

type BusinessIndustries struct {
	Data  []BusinessIndustry `json:"data"`
	Count int                `json:"count"`
}
