package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// monthsShown caps the monthly series of every stats endpoint.
const monthsShown = 12

type groupCount struct {
	ID    any   `bson:"_id"`
	Count int64 `bson:"count"`
}

type monthKey struct {
	Year  int `bson:"year"`
	Month int `bson:"month"`
}

type monthBucket struct {
	ID      monthKey `bson:"_id"`
	Count   int64    `bson:"count"`
	Revenue float64  `bson:"revenue"`
}

// MonthlyCount is one (year, month) bucket, labelled "YYYY-MM".
type MonthlyCount struct {
	Month   string   `json:"month"`
	Count   int64    `json:"count"`
	Revenue *float64 `json:"revenue,omitempty"`
}

func (b monthBucket) label() string {
	return fmt.Sprintf("%04d-%02d", b.ID.Year, b.ID.Month)
}

// countBy groups the collection on field and returns count per value.
func countBy(ctx context.Context, coll *mongo.Collection, field string) ([]groupCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	var out []groupCount
	if err := aggregate(ctx, coll, pipeline, &out); err != nil {
		return nil, fmt.Errorf("group by %s: %w", field, err)
	}
	return out, nil
}

// monthlyPipeline groups documents by year and month of createdAt and keeps
// the most recent monthsShown buckets in ascending order. A non-empty
// sumField also sums that field into "revenue".
func monthlyPipeline(sumField string) mongo.Pipeline {
	group := bson.D{
		{Key: "_id", Value: bson.D{
			{Key: "year", Value: bson.D{{Key: "$year", Value: "$createdAt"}}},
			{Key: "month", Value: bson.D{{Key: "$month", Value: "$createdAt"}}},
		}},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}
	if sumField != "" {
		group = append(group, bson.E{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$" + sumField}}})
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "createdAt", Value: bson.D{{Key: "$type", Value: "date"}}}}}},
		{{Key: "$group", Value: group}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: -1}, {Key: "_id.month", Value: -1}}}},
		{{Key: "$limit", Value: monthsShown}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}
}

func monthly(ctx context.Context, coll *mongo.Collection, sumField string) ([]MonthlyCount, error) {
	var buckets []monthBucket
	if err := aggregate(ctx, coll, monthlyPipeline(sumField), &buckets); err != nil {
		return nil, fmt.Errorf("monthly stats: %w", err)
	}

	out := make([]MonthlyCount, 0, len(buckets))
	for _, b := range buckets {
		m := MonthlyCount{Month: b.label(), Count: b.Count}
		if sumField != "" {
			revenue := b.Revenue
			m.Revenue = &revenue
		}
		out = append(out, m)
	}
	return out, nil
}

func aggregate(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out any) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// groupKey renders a $group _id as a map key. Documents missing the field
// are grouped under "unknown".
func groupKey(id any) string {
	if id == nil {
		return "unknown"
	}
	return fmt.Sprint(id)
}

func countsByKey(groups []groupCount) map[string]int64 {
	out := make(map[string]int64, len(groups))
	for _, g := range groups {
		out[groupKey(g.ID)] += g.Count
	}
	return out
}
