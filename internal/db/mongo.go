package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one entity type in one MongoDB collection.
type MongoStore[T any, P Doc[T]] struct {
	coll *mongo.Collection
}

func NewMongoStore[T any, P Doc[T]](database *mongo.Database, name string) *MongoStore[T, P] {
	return &MongoStore[T, P]{coll: database.Collection(name)}
}

var newestFirst = bson.D{{Key: "createdOn", Value: -1}}

func (s *MongoStore[T, P]) Insert(ctx context.Context, doc *T) error {
	stampInsert(P(doc).DocMeta())

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert into %s: %w", s.coll.Name(), ErrDuplicate)
		}
		return fmt.Errorf("insert into %s: %w", s.coll.Name(), err)
	}
	return nil
}

func (s *MongoStore[T, P]) List(ctx context.Context) ([]T, error) {
	return s.find(ctx, bson.D{})
}

func (s *MongoStore[T, P]) Get(ctx context.Context, id string) (*T, error) {
	return s.FindOne(ctx, "_id", id)
}

func (s *MongoStore[T, P]) FindBy(ctx context.Context, field string, value any) ([]T, error) {
	return s.find(ctx, bson.D{{Key: field, Value: value}})
}

func (s *MongoStore[T, P]) FindOne(ctx context.Context, field string, value any) (*T, error) {
	var doc T
	err := s.coll.FindOne(ctx, bson.D{{Key: field, Value: value}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find in %s: %w", s.coll.Name(), err)
	}
	return &doc, nil
}

func (s *MongoStore[T, P]) find(ctx context.Context, filter bson.D) ([]T, error) {
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", s.coll.Name(), err)
	}
	defer cur.Close(ctx)

	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.coll.Name(), err)
	}
	return docs, nil
}

func (s *MongoStore[T, P]) Replace(ctx context.Context, doc *T) error {
	meta := P(doc).DocMeta()
	expected := meta.Version
	prevUpdated := meta.UpdatedOn

	meta.UpdatedOn = now()
	meta.Version = expected + 1

	filter := bson.D{{Key: "_id", Value: meta.ID}, {Key: "version", Value: expected}}
	res, err := s.coll.ReplaceOne(ctx, filter, doc)
	if err == nil && res.MatchedCount == 1 {
		return nil
	}

	meta.Version = expected
	meta.UpdatedOn = prevUpdated
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("replace in %s: %w", s.coll.Name(), ErrDuplicate)
		}
		return fmt.Errorf("replace in %s: %w", s.coll.Name(), err)
	}

	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: meta.ID}})
	if err != nil {
		return fmt.Errorf("count in %s: %w", s.coll.Name(), err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *MongoStore[T, P]) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", s.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore[T, P]) DeleteBy(ctx context.Context, field string, value any) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: field, Value: value}})
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", s.coll.Name(), err)
	}
	return res.DeletedCount, nil
}
