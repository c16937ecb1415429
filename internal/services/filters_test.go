package services

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserFilterQuery(t *testing.T) {
	if q := (UserFilter{}).query(); len(q) != 0 {
		t.Fatalf("empty filter should match everything, got %v", q)
	}

	q := UserFilter{Search: "a.n", Role: "admin"}.query()
	if q["role"] != "admin" {
		t.Errorf("role = %v", q["role"])
	}
	or, ok := q["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("$or = %#v", q["$or"])
	}
	re := or[0].(bson.M)["name"].(primitive.Regex)
	if re.Pattern != `a\.n` || re.Options != "i" {
		t.Errorf("search must be a literal, case-insensitive match, got %+v", re)
	}
}

func TestProfileFilterQuery(t *testing.T) {
	q := ProfileFilter{Search: "bike", Status: "active", Category: "sports"}.query()

	if q["status"] != "active" || q["category"] != "sports" {
		t.Errorf("exact filters missing: %v", q)
	}
	or := q["$or"].(bson.A)
	fields := map[string]bool{}
	for _, clause := range or {
		for k := range clause.(bson.M) {
			fields[k] = true
		}
	}
	for _, f := range []string{"title", "description", "tags"} {
		if !fields[f] {
			t.Errorf("search does not cover %s", f)
		}
	}
}

func TestOrderFilterQuery(t *testing.T) {
	buyer := primitive.NewObjectID()
	q, err := OrderFilter{Status: "pending", BuyerID: buyer.Hex()}.query()
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if q["buyerId"] != buyer {
		t.Errorf("buyerId must be an ObjectID, got %#v", q["buyerId"])
	}
	if _, ok := q["sellerId"]; ok {
		t.Error("sellerId should be absent")
	}

	if _, err := (OrderFilter{SellerID: "nope"}).query(); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for bad sellerId, got %v", err)
	}
}

func TestUserUpdateSetsOnlyProvidedFields(t *testing.T) {
	name := "Ann"
	active := false
	now := time.Now()

	set := UserUpdate{Name: &name, IsActive: &active}.set(now)

	if set["name"] != "Ann" || set["isActive"] != false || set["updatedAt"] != now {
		t.Errorf("unexpected $set: %v", set)
	}
	for _, k := range []string{"email", "role"} {
		if _, ok := set[k]; ok {
			t.Errorf("%s should not be touched", k)
		}
	}
}

func TestProfileUpdateSet(t *testing.T) {
	title := "New"
	var nilTags []string
	set, err := ProfileUpdate{Title: &title, Price: &Price{Value: 42, Set: true}, Tags: &nilTags}.set(time.Now())
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if set["price"] != 42.0 || set["title"] != "New" {
		t.Errorf("unexpected $set: %v", set)
	}
	if tags, ok := set["tags"].([]string); !ok || tags == nil {
		t.Errorf("tags should be an empty list, got %#v", set["tags"])
	}
	if _, ok := set["content"]; ok {
		t.Error("content should not be touched")
	}

	if _, err := (ProfileUpdate{Price: &Price{}}).set(time.Now()); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty price, got %v", err)
	}
}

func TestMonthlyPipelineKeepsLatestTwelveAscending(t *testing.T) {
	p := monthlyPipeline("amount")
	if len(p) != 5 {
		t.Fatalf("pipeline has %d stages", len(p))
	}
	if p[2][0].Key != "$sort" || p[3][0].Key != "$limit" || p[4][0].Key != "$sort" {
		t.Fatalf("unexpected stage order: %v", p)
	}
	desc := p[2][0].Value.(bson.D)
	asc := p[4][0].Value.(bson.D)
	if desc[0].Value != -1 || asc[0].Value != 1 {
		t.Errorf("expected newest-first selection then ascending output")
	}
	if p[3][0].Value != monthsShown {
		t.Errorf("limit = %v", p[3][0].Value)
	}

	group := p[1][0].Value.(bson.D)
	if group[len(group)-1].Key != "revenue" {
		t.Error("revenue sum missing")
	}
	if g := monthlyPipeline("")[1][0].Value.(bson.D); g[len(g)-1].Key == "revenue" {
		t.Error("revenue sum should be absent without a sum field")
	}
}

func TestCountsByKey(t *testing.T) {
	got := countsByKey([]groupCount{
		{ID: "admin", Count: 2},
		{ID: "user", Count: 5},
		{ID: nil, Count: 1},
	})
	if got["admin"] != 2 || got["user"] != 5 || got["unknown"] != 1 {
		t.Errorf("countsByKey = %v", got)
	}
}

func TestMonthLabel(t *testing.T) {
	b := monthBucket{ID: monthKey{Year: 2024, Month: 3}}
	if b.label() != "2024-03" {
		t.Errorf("label = %q", b.label())
	}
}
