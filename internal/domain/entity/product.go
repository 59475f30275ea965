package entity

import (
	"time"
)

type ProductImage struct {
	ID           string `json:"id" firestore:"id"`
	URL          string `json:"url" firestore:"url"`
	DisplayOrder int    `json:"display_order" firestore:"displayOrder"`
}

// Product dikelola oleh layanan katalog; engine ini hanya menulis field
// Rating dan ReviewCount lewat Aggregate Updater.
type Product struct {
	ID          string         `json:"id" firestore:"id"`
	Name        string         `json:"name" firestore:"name"`
	Description string         `json:"description" firestore:"description"`
	Price       float64        `json:"price" firestore:"price"`
	Images      []ProductImage `json:"images" firestore:"images"`
	Status      string         `json:"status" firestore:"status"`

	// Aggregate over the currently approved reviews. Rating is the mean
	// rounded half-up to 1 decimal place.
	Rating      float64 `json:"rating" firestore:"rating"`
	ReviewCount int     `json:"review_count" firestore:"reviewCount"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
