package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogsupport/internal/database"
	"blogsupport/internal/models"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepository struct {
	collection *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{collection: db.Collection(database.CommentsCollection)}
}

func (r *CommentRepository) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	now := time.Now().UTC()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return comment, nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error) {
	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, ErrCommentNotFound
		}
		return models.Comment{}, fmt.Errorf("find comment: %w", err)
	}
	return comment, nil
}

// FindBySlug returns the whole flat set for a post; ordering is left to the
// thread assembler.
func (r *CommentRepository) FindBySlug(ctx context.Context, slug string) ([]models.Comment, error) {
	return r.find(ctx, bson.M{"postSlug": slug})
}

// Recent returns the newest comments across all posts.
func (r *CommentRepository) Recent(ctx context.Context, limit int64) ([]models.Comment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, bson.M{}, opts)
}

func (r *CommentRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Comment, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := make([]models.Comment, 0)
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}

// Update replaces name, body and url and returns the document after the write.
func (r *CommentRepository) Update(ctx context.Context, id primitive.ObjectID, name, body, url string) (models.Comment, error) {
	update := bson.M{"$set": bson.M{
		"name":      name,
		"body":      body,
		"url":       url,
		"updatedAt": time.Now().UTC(),
	}}

	var updated models.Comment
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, ErrCommentNotFound
		}
		return models.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return updated, nil
}

// Delete removes the comment and returns what was removed.
func (r *CommentRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.Comment, error) {
	var deleted models.Comment
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, ErrCommentNotFound
		}
		return models.Comment{}, fmt.Errorf("delete comment: %w", err)
	}
	return deleted, nil
}
