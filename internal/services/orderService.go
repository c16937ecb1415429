package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/ProfileSeller/internal/db"
	"github.com/arzan03/ProfileSeller/internal/models"
	"github.com/arzan03/ProfileSeller/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderFilter struct {
	Status   string
	BuyerID  string
	SellerID string
}

func (f OrderFilter) query() (bson.M, error) {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.BuyerID != "" {
		id, err := ParseID(f.BuyerID)
		if err != nil {
			return nil, err
		}
		q["buyerId"] = id
	}
	if f.SellerID != "" {
		id, err := ParseID(f.SellerID)
		if err != nil {
			return nil, err
		}
		q["sellerId"] = id
	}
	return q, nil
}

type OrderInput struct {
	BuyerID       string `json:"buyerId" validate:"required,objectid"`
	SellerID      string `json:"sellerId" validate:"required,objectid"`
	ProfileID     string `json:"profileId" validate:"required,objectid"`
	PaymentMethod string `json:"paymentMethod"`
}

// OrderUpdate holds the fields a PUT may change; nil means leave as is.
type OrderUpdate struct {
	Status        *string `json:"status"`
	PaymentMethod *string `json:"paymentMethod"`
}

type StatusRevenue struct {
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

type OrderStats struct {
	Total        int64                    `json:"total"`
	TotalRevenue float64                  `json:"totalRevenue"`
	Status       map[string]int64         `json:"status"`
	Revenue      map[string]StatusRevenue `json:"revenue"`
	Monthly      []MonthlyCount           `json:"monthly"`
}

type statusGroup struct {
	ID     any     `bson:"_id"`
	Count  int64   `bson:"count"`
	Amount float64 `bson:"amount"`
}

type OrderService struct {
	orders   *mongo.Collection
	users    *mongo.Collection
	profiles *mongo.Collection
	fanOut   int
}

func NewOrderService(database *mongo.Database) *OrderService {
	return &OrderService{
		orders:   database.Collection(db.OrdersCollection),
		users:    database.Collection(db.UsersCollection),
		profiles: database.Collection(db.ProfilesCollection),
		fanOut:   utils.DefaultFanOut,
	}
}

func (s *OrderService) List(ctx context.Context, f OrderFilter, p Page) ([]models.OrderView, Pagination, error) {
	q, err := f.query()
	if err != nil {
		return nil, Pagination{}, err
	}

	total, err := s.orders.CountDocuments(ctx, q)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))

	cursor, err := s.orders.Find(ctx, q, opts)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, Pagination{}, fmt.Errorf("decode orders: %w", err)
	}

	views, err := s.enrich(ctx, orders, false)
	if err != nil {
		return nil, Pagination{}, err
	}
	return views, NewPagination(p, total), nil
}

func (s *OrderService) Get(ctx context.Context, id primitive.ObjectID) (models.OrderView, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.OrderView{}, notFound("order")
	}
	if err != nil {
		return models.OrderView{}, fmt.Errorf("find order: %w", err)
	}

	views, err := s.enrich(ctx, []models.Order{order}, true)
	if err != nil {
		return models.OrderView{}, err
	}
	return views[0], nil
}

// Create places an order for an active listing. The amount is the listing
// price at this moment.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (models.Order, error) {
	if err := validateStruct(in); err != nil {
		return models.Order{}, err
	}

	buyerID, err := ParseID(in.BuyerID)
	if err != nil {
		return models.Order{}, err
	}
	sellerID, err := ParseID(in.SellerID)
	if err != nil {
		return models.Order{}, err
	}
	profileID, err := ParseID(in.ProfileID)
	if err != nil {
		return models.Order{}, err
	}

	var profile models.Profile
	err = s.profiles.FindOne(ctx, bson.M{"_id": profileID},
		options.FindOne().SetProjection(bson.M{"price": 1, "status": 1})).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, notFound("profile")
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("find profile: %w", err)
	}
	if profile.Status != models.ProfileActive {
		return models.Order{}, validationError("profile is not available for purchase")
	}

	method := in.PaymentMethod
	if method == "" {
		method = models.DefaultPaymentMethod
	}

	now := time.Now().UTC()
	order := models.Order{
		ID:            primitive.NewObjectID(),
		BuyerID:       buyerID,
		SellerID:      sellerID,
		ProfileID:     profileID,
		Amount:        profile.Price,
		Status:        models.OrderPending,
		PaymentMethod: method,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := s.orders.InsertOne(ctx, order); err != nil {
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

// Update changes status and/or payment method and returns the stored order.
func (s *OrderService) Update(ctx context.Context, id primitive.ObjectID, u OrderUpdate) (models.Order, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.PaymentMethod != nil {
		set["paymentMethod"] = *u.PaymentMethod
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := s.orders.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, notFound("order")
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("update order: %w", err)
	}
	return order, nil
}

func (s *OrderService) Stats(ctx context.Context) (OrderStats, error) {
	var (
		stats    OrderStats
		byStatus []statusGroup
	)

	statusPipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "amount", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
	}

	err := utils.RunTasks(ctx, s.fanOut,
		func(ctx context.Context) (err error) {
			stats.Total, err = s.orders.CountDocuments(ctx, bson.D{})
			return err
		},
		func(ctx context.Context) error {
			return aggregate(ctx, s.orders, statusPipeline, &byStatus)
		},
		func(ctx context.Context) (err error) {
			stats.Monthly, err = monthly(ctx, s.orders, "amount")
			return err
		},
	)
	if err != nil {
		return OrderStats{}, fmt.Errorf("order stats: %w", err)
	}

	stats.Status = make(map[string]int64, len(byStatus))
	stats.Revenue = make(map[string]StatusRevenue, len(byStatus))
	for _, g := range byStatus {
		key := groupKey(g.ID)
		stats.Status[key] += g.Count
		r := stats.Revenue[key]
		r.Count += g.Count
		r.Amount += g.Amount
		stats.Revenue[key] = r
		stats.TotalRevenue += g.Amount
	}
	return stats, nil
}

// enrich attaches buyer, seller and listing to each order. The lookups are
// independent reads issued in parallel; a reference that no longer resolves
// is left nil.
func (s *OrderService) enrich(ctx context.Context, orders []models.Order, detailed bool) ([]models.OrderView, error) {
	views := make([]models.OrderView, len(orders))
	for i, o := range orders {
		views[i].Order = o
	}

	listingFields := bson.M{"title": 1, "price": 1}
	if detailed {
		listingFields["description"] = 1
	}

	err := utils.ForEach(ctx, len(views)*3, s.fanOut, func(ctx context.Context, n int) error {
		v := &views[n/3]
		var err error
		switch n % 3 {
		case 0:
			v.Buyer, err = s.party(ctx, v.BuyerID)
		case 1:
			v.Seller, err = s.party(ctx, v.SellerID)
		case 2:
			v.Profile, err = s.listing(ctx, v.ProfileID, listingFields)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("enrich orders: %w", err)
	}
	return views, nil
}

func (s *OrderService) party(ctx context.Context, id primitive.ObjectID) (*models.Party, error) {
	var p models.Party
	err := s.users.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"name": 1, "email": 1})).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *OrderService) listing(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.ListingRef, error) {
	var l models.ListingRef
	err := s.profiles.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(fields)).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
