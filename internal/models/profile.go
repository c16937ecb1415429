package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProfileActive   = "active"
	ProfileInactive = "inactive"
	ProfileDeleted  = "deleted"

	DefaultCategory = "general"
)

// Profile is a marketplace listing.
type Profile struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Status      string             `bson:"status" json:"status"`
	Category    string             `bson:"category" json:"category"`
	Tags        []string           `bson:"tags" json:"tags"`
	SellerID    primitive.ObjectID `bson:"sellerId" json:"sellerId"`
	Content     string             `bson:"content" json:"content"`
	Attachments []Attachment       `bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
}

// Attachment references an object stored in the attachment bucket.
type Attachment struct {
	Key         string    `bson:"key" json:"key"`
	Filename    string    `bson:"filename" json:"filename"`
	ContentType string    `bson:"contentType" json:"contentType"`
	Size        int64     `bson:"size" json:"size"`
	UploadedAt  time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// ProfileSummary is the list view of a listing; it leaves out the content
// body and attachments.
type ProfileSummary struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Price       float64            `json:"price"`
	Status      string             `json:"status"`
	Category    string             `json:"category"`
	Tags        []string           `json:"tags"`
	SellerID    primitive.ObjectID `json:"sellerId"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func (p Profile) Summary() ProfileSummary {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProfileSummary{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Status:      p.Status,
		Category:    p.Category,
		Tags:        tags,
		SellerID:    p.SellerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Attachment returns the attachment stored under key.
func (p Profile) Attachment(key string) (Attachment, bool) {
	for _, a := range p.Attachments {
		if a.Key == key {
			return a, true
		}
	}
	return Attachment{}, false
}
