package handlers

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/arzan03/ProfileSeller/internal/db"
	"github.com/arzan03/ProfileSeller/internal/models"
	"github.com/arzan03/ProfileSeller/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAuth struct {
	register func(services.RegisterInput) (models.User, error)
	login    func(services.LoginInput) (models.User, string, error)
	profile  func(token string) (models.User, error)
}

func (f *fakeAuth) Register(_ context.Context, in services.RegisterInput) (models.User, error) {
	return f.register(in)
}

func (f *fakeAuth) Login(_ context.Context, in services.LoginInput) (models.User, string, error) {
	return f.login(in)
}

func (f *fakeAuth) ProfileFromToken(_ context.Context, token string) (models.User, error) {
	return f.profile(token)
}

type fakeUsers struct {
	users      map[primitive.ObjectID]models.User
	lastFilter services.UserFilter
	lastPage   services.Page
	writes     int
}

func (f *fakeUsers) List(_ context.Context, filter services.UserFilter, p services.Page) ([]models.User, services.Pagination, error) {
	f.lastFilter, f.lastPage = filter, p
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, services.NewPagination(p, int64(len(out))), nil
}

func (f *fakeUsers) Get(_ context.Context, id primitive.ObjectID) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, &services.Error{Kind: services.ErrNotFound, Message: "user not found"}
	}
	return u, nil
}

func (f *fakeUsers) Update(_ context.Context, id primitive.ObjectID, in services.UserUpdate) (models.User, error) {
	f.writes++
	u, ok := f.users[id]
	if !ok {
		return models.User{}, &services.Error{Kind: services.ErrNotFound, Message: "user not found"}
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	f.users[id] = u
	return u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	u, ok := f.users[id]
	if !ok {
		return &services.Error{Kind: services.ErrNotFound, Message: "user not found"}
	}
	u.IsActive = false
	f.users[id] = u
	return nil
}

func (f *fakeUsers) Stats(context.Context) (services.UserStats, error) {
	return services.UserStats{Total: int64(len(f.users))}, nil
}

type fakeProfiles struct {
	profiles  map[primitive.ObjectID]models.Profile
	attachErr error
	writes    int
}

func (f *fakeProfiles) List(_ context.Context, _ services.ProfileFilter, p services.Page) ([]models.Profile, services.Pagination, error) {
	out := []models.Profile{}
	for _, pr := range f.profiles {
		out = append(out, pr)
	}
	return out, services.NewPagination(p, int64(len(out))), nil
}

func (f *fakeProfiles) Get(_ context.Context, id primitive.ObjectID) (models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return models.Profile{}, &services.Error{Kind: services.ErrNotFound, Message: "profile not found"}
	}
	return p, nil
}

func (f *fakeProfiles) Create(_ context.Context, in services.ProfileInput) (models.Profile, error) {
	f.writes++
	if in.Title == "" || !in.Price.Set {
		return models.Profile{}, &services.Error{Kind: services.ErrValidation, Message: "title, price required"}
	}
	p := models.Profile{
		ID:       primitive.NewObjectID(),
		Title:    in.Title,
		Price:    in.Price.Value,
		Status:   models.ProfileActive,
		Category: models.DefaultCategory,
		Tags:     []string{},
	}
	f.profiles[p.ID] = p
	return p, nil
}

func (f *fakeProfiles) Update(_ context.Context, id primitive.ObjectID, in services.ProfileUpdate) (models.Profile, error) {
	f.writes++
	p, ok := f.profiles[id]
	if !ok {
		return models.Profile{}, &services.Error{Kind: services.ErrNotFound, Message: "profile not found"}
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	f.profiles[id] = p
	return p, nil
}

func (f *fakeProfiles) Delete(_ context.Context, id primitive.ObjectID) error {
	p, ok := f.profiles[id]
	if !ok {
		return &services.Error{Kind: services.ErrNotFound, Message: "profile not found"}
	}
	p.Status = models.ProfileDeleted
	f.profiles[id] = p
	return nil
}

func (f *fakeProfiles) AddAttachment(_ context.Context, id primitive.ObjectID, a models.Attachment) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	p := f.profiles[id]
	p.Attachments = append(p.Attachments, a)
	f.profiles[id] = p
	return nil
}

func (f *fakeProfiles) Stats(context.Context) (services.ProfileStats, error) {
	return services.ProfileStats{Total: int64(len(f.profiles))}, nil
}

type fakeOrders struct {
	views  map[primitive.ObjectID]models.OrderView
	err    error
	writes int
}

func (f *fakeOrders) List(_ context.Context, filter services.OrderFilter, p services.Page) ([]models.OrderView, services.Pagination, error) {
	if filter.BuyerID != "" {
		if _, err := services.ParseID(filter.BuyerID); err != nil {
			return nil, services.Pagination{}, err
		}
	}
	out := []models.OrderView{}
	for _, v := range f.views {
		out = append(out, v)
	}
	return out, services.NewPagination(p, int64(len(out))), nil
}

func (f *fakeOrders) Get(_ context.Context, id primitive.ObjectID) (models.OrderView, error) {
	v, ok := f.views[id]
	if !ok {
		return models.OrderView{}, &services.Error{Kind: services.ErrNotFound, Message: "order not found"}
	}
	return v, nil
}

func (f *fakeOrders) Create(context.Context, services.OrderInput) (models.Order, error) {
	f.writes++
	if f.err != nil {
		return models.Order{}, f.err
	}
	return models.Order{ID: primitive.NewObjectID(), Amount: 10, Status: models.OrderPending}, nil
}

func (f *fakeOrders) Update(_ context.Context, id primitive.ObjectID, in services.OrderUpdate) (models.Order, error) {
	f.writes++
	v, ok := f.views[id]
	if !ok {
		return models.Order{}, &services.Error{Kind: services.ErrNotFound, Message: "order not found"}
	}
	if in.Status != nil {
		v.Status = *in.Status
	}
	f.views[id] = v
	return v.Order, nil
}

func (f *fakeOrders) Stats(context.Context) (services.OrderStats, error) {
	if f.err != nil {
		return services.OrderStats{}, f.err
	}
	return services.OrderStats{Status: map[string]int64{models.OrderPending: int64(len(f.views))}}, nil
}

type fakeStore struct {
	objects map[string][]byte
	putErr  error
	removed []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	f.objects[key] = buf.Bytes()
	return nil
}

func (f *fakeStore) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://minio.local/bucket/" + key + "?X-Amz-Signature=abc", nil
}

func (f *fakeStore) Remove(_ context.Context, key string) error {
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

type fakeDatabase struct {
	err error
}

func (f *fakeDatabase) Name() string { return "profile_seller" }

func (f *fakeDatabase) Collections(context.Context) ([]db.CollectionInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []db.CollectionInfo{{Name: "users", Type: "collection"}, {Name: "orders", Type: "collection"}}, nil
}

func (f *fakeDatabase) Stats(context.Context) (db.Stats, error) {
	if f.err != nil {
		return db.Stats{}, f.err
	}
	return db.Stats{DB: "profile_seller", Collections: 2, DataSize: 2048, StorageSize: 4096, IndexSize: 1024}, nil
}

func (f *fakeDatabase) SmokeTest(context.Context) (db.SmokeResult, error) {
	if f.err != nil {
		return db.SmokeResult{}, f.err
	}
	return db.SmokeResult{InsertedID: primitive.NewObjectID(), CollectionsCount: 2}, nil
}
