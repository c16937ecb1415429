package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/ProfileSeller/internal/db"
	"github.com/arzan03/ProfileSeller/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	users  *mongo.Collection
	tokens *Tokens
}

func NewAuthService(database *mongo.Database, tokens *Tokens) *AuthService {
	return &AuthService{
		users:  database.Collection(db.UsersCollection),
		tokens: tokens,
	}
}

// Register creates a user with role "user". The email pre-check gives a
// clean 409 in the common case; the unique index on email catches the race.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if err := validateStruct(in); err != nil {
		return models.User{}, err
	}

	err := s.users.FindOne(ctx, bson.M{"email": in.Email}).Err()
	if err == nil {
		return models.User{}, conflict("email already in use")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, fmt.Errorf("look up email: %w", err)
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  hashed,
		Role:      models.RoleUser,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, conflict("email already in use")
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// Login checks the credentials and returns the user with a signed token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (models.User, string, error) {
	if err := validateStruct(in); err != nil {
		return models.User{}, "", err
	}

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": in.Email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, "", unauthenticated("invalid email or password", nil)
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("look up user: %w", err)
	}

	if !VerifyPassword(in.Password, user.Password) {
		return models.User{}, "", unauthenticated("invalid email or password", nil)
	}

	if user.Role == "" {
		user.Role = models.RoleUser
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.User{}, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

// ProfileFromToken resolves a bearer token to the user it was issued for.
func (s *AuthService) ProfileFromToken(ctx context.Context, token string) (models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return models.User{}, err
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return models.User{}, unauthenticated("invalid token payload", err)
	}

	var user models.User
	err = s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, notFound("user")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("look up user: %w", err)
	}
	return user, nil
}
