package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderPending         = "pending"
	DefaultPaymentMethod = "credit_card"
)

// Order records a purchase of a listing. Amount is the listing price at the
// time the order was placed and is never recomputed.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BuyerID       primitive.ObjectID `bson:"buyerId" json:"buyerId"`
	SellerID      primitive.ObjectID `bson:"sellerId" json:"sellerId"`
	ProfileID     primitive.ObjectID `bson:"profileId" json:"profileId"`
	Amount        float64            `bson:"amount" json:"amount"`
	Status        string             `bson:"status" json:"status"`
	PaymentMethod string             `bson:"paymentMethod" json:"paymentMethod"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Party is the public part of a user attached to an order.
type Party struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// ListingRef is the part of a listing attached to an order. Description is
// only filled on the single-order view.
type ListingRef struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
}

// OrderView is an order enriched with its buyer, seller and listing. A nil
// reference means the document could not be found when the order was read.
type OrderView struct {
	Order
	Buyer   *Party      `json:"buyer"`
	Seller  *Party      `json:"seller"`
	Profile *ListingRef `json:"profile"`
}
