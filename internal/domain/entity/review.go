package entity

import (
	"time"
)

// Review status values. Transitions are one-directional: pending can move to
// approved or rejected, never back. Delete is allowed from any status.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// Review adalah ulasan produk yang dikirim oleh pembeli dan menunggu moderasi
type Review struct {
	ID        string `json:"id" firestore:"id"`
	ProductID string `json:"product_id" firestore:"productId"`

	// Identity snapshot taken at submission time, trusted afterwards
	UserID    string `json:"user_id" firestore:"userId"`
	UserName  string `json:"user_name" firestore:"userName"`
	UserEmail string `json:"user_email" firestore:"userEmail"`

	Rating  int      `json:"rating" firestore:"rating"` // 1-5, immutable after creation
	Title   string   `json:"title" firestore:"title"`
	Comment string   `json:"comment" firestore:"comment"`
	Images  []string `json:"images,omitempty" firestore:"images,omitempty"`

	Status          string `json:"status" firestore:"status"` // "pending", "approved", "rejected"
	RejectionReason string `json:"rejection_reason,omitempty" firestore:"rejectionReason,omitempty"`

	// HelpfulCount is always len(HelpfulUserIDs), never incremented on its own
	HelpfulUserIDs []string `json:"helpful_user_ids" firestore:"helpfulUserIds"`
	HelpfulCount   int      `json:"helpful_count" firestore:"helpfulCount"`

	// At most one active report per review, last write wins
	Reported     bool       `json:"reported" firestore:"reported"`
	ReportReason string     `json:"report_reason,omitempty" firestore:"reportReason,omitempty"`
	ReportedBy   string     `json:"reported_by,omitempty" firestore:"reportedBy,omitempty"`
	ReportedAt   *time.Time `json:"reported_at,omitempty" firestore:"reportedAt,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// MarkedHelpfulBy reports whether userID already voted this review helpful
func (r *Review) MarkedHelpfulBy(userID string) bool {
	for _, id := range r.HelpfulUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ReviewStatistics adalah ringkasan untuk dashboard moderator
type ReviewStatistics struct {
	TotalReviews    int     `json:"total_reviews"`
	ApprovedReviews int     `json:"approved_reviews"`
	PendingReviews  int     `json:"pending_reviews"`
	AverageRating   float64 `json:"average_rating"`
}
