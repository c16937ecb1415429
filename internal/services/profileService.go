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

type ProfileFilter struct {
	Search   string
	Status   string
	Category string
}

func (f ProfileFilter) query() bson.M {
	q := bson.M{}
	if f.Search != "" {
		re := containsFold(f.Search)
		q["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"tags": re},
		}
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	return q
}

type ProfileInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       Price    `json:"price"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	SellerID    string   `json:"sellerId" validate:"required,objectid"`
	Content     string   `json:"content"`
}

// ProfileUpdate holds the fields a PUT may change; nil means leave as is.
type ProfileUpdate struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *Price    `json:"price"`
	Status      *string   `json:"status"`
	Category    *string   `json:"category"`
	Tags        *[]string `json:"tags"`
	Content     *string   `json:"content"`
}

func (u ProfileUpdate) set(now time.Time) (bson.M, error) {
	set := bson.M{"updatedAt": now}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		if !u.Price.Set {
			return nil, validationError("price must be a number")
		}
		set["price"] = u.Price.Value
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Tags != nil {
		tags := *u.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	return set, nil
}

type RevenueStats struct {
	Count        int64   `json:"count"`
	TotalRevenue float64 `json:"totalRevenue"`
	AvgPrice     float64 `json:"avgPrice"`
}

type revenueGroup struct {
	ID           any     `bson:"_id"`
	Count        int64   `bson:"count"`
	TotalRevenue float64 `bson:"totalRevenue"`
	AvgPrice     float64 `bson:"avgPrice"`
}

type ProfileStats struct {
	Total       int64                   `json:"total"`
	ActiveCount int64                   `json:"activeCount"`
	Status      map[string]int64        `json:"status"`
	Categories  map[string]int64        `json:"categories"`
	Revenue     map[string]RevenueStats `json:"revenue"`
}

type ProfileService struct {
	profiles *mongo.Collection
	fanOut   int
}

func NewProfileService(database *mongo.Database) *ProfileService {
	return &ProfileService{profiles: database.Collection(db.ProfilesCollection), fanOut: utils.DefaultFanOut}
}

// List returns a page of listings without their content bodies.
func (s *ProfileService) List(ctx context.Context, f ProfileFilter, p Page) ([]models.Profile, Pagination, error) {
	q := f.query()

	total, err := s.profiles.CountDocuments(ctx, q)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count profiles: %w", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit)).
		SetProjection(bson.M{"content": 0, "attachments": 0})

	cursor, err := s.profiles.Find(ctx, q, opts)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("find profiles: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := []models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, Pagination{}, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, NewPagination(p, total), nil
}

// Get returns the full listing. Soft-deleted listings are still returned.
func (s *ProfileService) Get(ctx context.Context, id primitive.ObjectID) (models.Profile, error) {
	var profile models.Profile
	err := s.profiles.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Profile{}, notFound("profile")
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("find profile: %w", err)
	}
	if profile.Tags == nil {
		profile.Tags = []string{}
	}
	return profile, nil
}

func (s *ProfileService) Create(ctx context.Context, in ProfileInput) (models.Profile, error) {
	if err := validateStruct(in); err != nil {
		return models.Profile{}, err
	}
	if !in.Price.Set {
		return models.Profile{}, validationError("price required")
	}

	sellerID, err := ParseID(in.SellerID)
	if err != nil {
		return models.Profile{}, err
	}

	category := in.Category
	if category == "" {
		category = models.DefaultCategory
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now().UTC()
	profile := models.Profile{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price.Value,
		Status:      models.ProfileActive,
		Category:    category,
		Tags:        tags,
		SellerID:    sellerID,
		Content:     in.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.profiles.InsertOne(ctx, profile); err != nil {
		return models.Profile{}, fmt.Errorf("insert profile: %w", err)
	}
	return profile, nil
}

func (s *ProfileService) Update(ctx context.Context, id primitive.ObjectID, u ProfileUpdate) (models.Profile, error) {
	set, err := u.set(time.Now().UTC())
	if err != nil {
		return models.Profile{}, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var profile models.Profile
	err = s.profiles.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Profile{}, notFound("profile")
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

// Delete marks the listing deleted. The document stays fetchable by id.
func (s *ProfileService) Delete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.profiles.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":    models.ProfileDeleted,
		"deletedAt": now,
		"updatedAt": now,
	}})
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return notFound("profile")
	}
	return nil
}

// AddAttachment records an uploaded object on the listing.
func (s *ProfileService) AddAttachment(ctx context.Context, id primitive.ObjectID, a models.Attachment) error {
	res, err := s.profiles.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"attachments": a},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("add attachment: %w", err)
	}
	if res.MatchedCount == 0 {
		return notFound("profile")
	}
	return nil
}

func (s *ProfileService) Stats(ctx context.Context) (ProfileStats, error) {
	var (
		stats                ProfileStats
		statuses, categories []groupCount
		revenue              []revenueGroup
	)

	revenuePipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalRevenue", Value: bson.D{{Key: "$sum", Value: "$price"}}},
			{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: "$price"}}},
		}}},
	}

	err := utils.RunTasks(ctx, s.fanOut,
		func(ctx context.Context) (err error) {
			stats.Total, err = s.profiles.CountDocuments(ctx, bson.D{})
			return err
		},
		func(ctx context.Context) (err error) {
			stats.ActiveCount, err = s.profiles.CountDocuments(ctx, bson.M{"status": models.ProfileActive})
			return err
		},
		func(ctx context.Context) (err error) {
			statuses, err = countBy(ctx, s.profiles, "status")
			return err
		},
		func(ctx context.Context) (err error) {
			categories, err = countBy(ctx, s.profiles, "category")
			return err
		},
		func(ctx context.Context) error {
			return aggregate(ctx, s.profiles, revenuePipeline, &revenue)
		},
	)
	if err != nil {
		return ProfileStats{}, fmt.Errorf("profile stats: %w", err)
	}

	stats.Status = countsByKey(statuses)
	stats.Categories = countsByKey(categories)
	stats.Revenue = make(map[string]RevenueStats, len(revenue))
	for _, r := range revenue {
		stats.Revenue[groupKey(r.ID)] = RevenueStats{
			Count:        r.Count,
			TotalRevenue: r.TotalRevenue,
			AvgPrice:     r.AvgPrice,
		}
	}
	return stats, nil
}
