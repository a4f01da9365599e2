package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/satyam-kanaujiya/watchtube/internal/media"
	utils "github.com/satyam-kanaujiya/watchtube/internal/utis"
)

// Filter narrows a Find query. Zero-value fields are ignored.
type Filter struct {
	OwnerIDs       []string
	TagsAny        []string
	TitleSubstring string // case-insensitive
}

// Sort orders a Find query by one field.
type Sort struct {
	Field string
	Desc  bool
}

// VideoRepository is the durable store of Media records. Create is
// atomic and IncrementField is an atomic server-side increment.
type VideoRepository interface {
	Create(ctx context.Context, m *models.Media) error
	FindByID(ctx context.Context, id string) (*models.Media, error)
	UpdateByID(ctx context.Context, id string, patch models.MediaPatch) (*models.Media, error)
	IncrementField(ctx context.Context, id, field string, delta int64) (*models.Media, error)
	Find(ctx context.Context, f Filter, sort *Sort, limit int64) ([]models.Media, error)
	Sample(ctx context.Context, n int64) ([]models.Media, error)
}

type MongoVideoRepo struct {
	col *mongo.Collection
}

func NewMongoVideoRepo(col *mongo.Collection) *MongoVideoRepo {
	return &MongoVideoRepo{col: col}
}

func (r *MongoVideoRepo) Create(ctx context.Context, m *models.Media) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	_, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

func (r *MongoVideoRepo) FindByID(ctx context.Context, id string) (*models.Media, error) {
	var m models.Media
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MongoVideoRepo) UpdateByID(ctx context.Context, id string, patch models.MediaPatch) (*models.Media, error) {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

func (r *MongoVideoRepo) IncrementField(ctx context.Context, id, field string, delta int64) (*models.Media, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$inc": bson.M{field: delta}})
}

func (r *MongoVideoRepo) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*models.Media, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m models.Media
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MongoVideoRepo) Find(ctx context.Context, f Filter, sort *Sort, limit int64) ([]models.Media, error) {
	query := bson.M{}
	if len(f.OwnerIDs) > 0 {
		query["owner_id"] = bson.M{"$in": f.OwnerIDs}
	}
	if len(f.TagsAny) > 0 {
		query["tags"] = bson.M{"$in": f.TagsAny}
	}
	if f.TitleSubstring != "" {
		query["title"] = bson.M{"$regex": primitive.Regex{
			Pattern: regexp.QuoteMeta(f.TitleSubstring),
			Options: "i",
		}}
	}

	opts := options.Find()
	if sort != nil {
		dir := 1
		if sort.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: sort.Field, Value: dir}})
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find media: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Media{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoVideoRepo) Sample(ctx context.Context, n int64) ([]models.Media, error) {
	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$sample", Value: bson.M{"size": n}}},
	})
	if err != nil {
		return nil, fmt.Errorf("sample media: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Media{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
