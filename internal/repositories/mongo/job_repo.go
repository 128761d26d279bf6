package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"liquidhire/internal/models"
)

// JobRepo wraps the jobs catalog collection.
type JobRepo struct{ col *mongo.Collection }

// NewJobRepo connects to the collection and ensures a text index over the
// searchable fields.
func NewJobRepo(c *Client, dbName, colName string) (*JobRepo, error) {
	db, err := c.DB(dbName)
	if err != nil {
		return nil, err
	}
	if colName == "" {
		colName = "jobs"
	}

	col := db.Collection(colName)
	r := &JobRepo{col: col}

	_, _ = r.col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "company", Value: "text"},
			{Key: "description", Value: "text"},
		},
	})
	_, _ = r.col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return r, nil
}

func (r *JobRepo) List(ctx context.Context, limit int64) ([]models.Job, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var jobs []models.Job
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Search returns candidates matching any of the terms via the text index.
// Relevance ranking happens in the handler, not here.
func (r *JobRepo) Search(ctx context.Context, terms []string, limit int64) ([]models.Job, error) {
	if len(terms) == 0 {
		return r.List(ctx, limit)
	}
	query := ""
	for i, t := range terms {
		if i > 0 {
			query += " "
		}
		query += t
	}

	opts := options.Find().SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{"$text": bson.M{"$search": query}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var jobs []models.Job
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Upsert inserts or refreshes a listing keyed by its apply URL.
func (r *JobRepo) Upsert(ctx context.Context, job *models.Job) error {
	if job.URL == "" {
		return errors.New("job URL required")
	}
	now := time.Now().UTC()
	job.UpdatedAt = now
	if job.ID == "" {
		job.ID = primitive.NewObjectID().Hex()
	}

	filter := bson.M{"url": job.URL}
	update := bson.M{
		"$set": bson.M{
			"title":       job.Title,
			"company":     job.Company,
			"location":    job.Location,
			"description": job.Description,
			"source":      job.Source,
			"updated_at":  job.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        job.ID,
			"url":        job.URL,
			"created_at": now,
		},
	}
	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// DeleteStale drops listings the feed has stopped refreshing.
func (r *JobRepo) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"updated_at": bson.M{"$lt": olderThan}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
