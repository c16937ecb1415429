package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/arzan03/ProfileSeller/internal/db"
	"github.com/arzan03/ProfileSeller/internal/models"
	"github.com/arzan03/ProfileSeller/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

type UserFilter struct {
	Search string
	Role   string
}

func (f UserFilter) query() bson.M {
	q := bson.M{}
	if f.Search != "" {
		q["$or"] = bson.A{
			bson.M{"name": containsFold(f.Search)},
			bson.M{"email": containsFold(f.Search)},
		}
	}
	if f.Role != "" {
		q["role"] = f.Role
	}
	return q
}

// containsFold matches s anywhere in a field, case-insensitively.
func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// UserUpdate holds the fields a PUT may change; nil means leave as is.
type UserUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

func (u UserUpdate) set(now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Role != nil {
		set["role"] = *u.Role
	}
	if u.IsActive != nil {
		set["isActive"] = *u.IsActive
	}
	return set
}

type UserStats struct {
	Total   int64            `json:"total"`
	Roles   map[string]int64 `json:"roles"`
	Status  map[string]int64 `json:"status"`
	Monthly []MonthlyCount   `json:"monthly"`
}

type UserService struct {
	users  *mongo.Collection
	fanOut int
}

func NewUserService(database *mongo.Database) *UserService {
	return &UserService{users: database.Collection(db.UsersCollection), fanOut: utils.DefaultFanOut}
}

func (s *UserService) List(ctx context.Context, f UserFilter, p Page) ([]models.User, Pagination, error) {
	q := f.query()

	total, err := s.users.CountDocuments(ctx, q)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit)).
		SetProjection(bson.M{"password": 0})

	cursor, err := s.users.Find(ctx, q, opts)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, Pagination{}, fmt.Errorf("decode users: %w", err)
	}
	return users, NewPagination(p, total), nil
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, notFound("user")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Update applies the provided fields and returns the updated user.
func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, u UserUpdate) (models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": u.set(time.Now().UTC())}, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, notFound("user")
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, conflict("email already in use")
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete deactivates the user. The document is kept.
func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isActive":  false,
		"deletedAt": now,
		"updatedAt": now,
	}})
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if res.MatchedCount == 0 {
		return notFound("user")
	}
	return nil
}

func (s *UserService) Stats(ctx context.Context) (UserStats, error) {
	var (
		stats           UserStats
		roles, activity []groupCount
	)

	err := utils.RunTasks(ctx, s.fanOut,
		func(ctx context.Context) (err error) {
			stats.Total, err = s.users.CountDocuments(ctx, bson.D{})
			return err
		},
		func(ctx context.Context) (err error) {
			roles, err = countBy(ctx, s.users, "role")
			return err
		},
		func(ctx context.Context) (err error) {
			activity, err = countBy(ctx, s.users, "isActive")
			return err
		},
		func(ctx context.Context) (err error) {
			stats.Monthly, err = monthly(ctx, s.users, "")
			return err
		},
	)
	if err != nil {
		return UserStats{}, fmt.Errorf("user stats: %w", err)
	}

	stats.Roles = countsByKey(roles)
	stats.Status = map[string]int64{"active": 0, "inactive": 0}
	for _, g := range activity {
		if active, _ := g.ID.(bool); active {
			stats.Status["active"] += g.Count
		} else {
			stats.Status["inactive"] += g.Count
		}
	}
	return stats, nil
}
