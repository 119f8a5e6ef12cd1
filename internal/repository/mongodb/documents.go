package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/msomdec/devconnector/internal/domain"
)

// DocumentStore implements domain.DocumentStore on MongoDB. Sub-collection
// mutations are single findOneAndUpdate calls with $push/$pull, so they are
// atomic on the server.
type DocumentStore struct {
	db *mongo.Database
}

var _ domain.DocumentStore = (*DocumentStore)(nil)

func (s *DocumentStore) coll(c domain.Collection) *mongo.Collection {
	return s.db.Collection(string(c))
}

func (s *DocumentStore) FindByID(ctx context.Context, coll domain.Collection, id string, out any) error {
	return s.FindOne(ctx, coll, domain.Filter{"_id": id}, out)
}

func (s *DocumentStore) FindOne(ctx context.Context, coll domain.Collection, filter domain.Filter, out any) error {
	res := s.coll(coll).FindOne(ctx, toBSON(filter))
	return decodeResult(res, out, "find one document")
}

func (s *DocumentStore) Find(ctx context.Context, coll domain.Collection, filter domain.Filter, sortDesc string, out any) error {
	opts := options.Find()
	if sortDesc != "" {
		opts.SetSort(bson.D{{Key: sortDesc, Value: -1}})
	}

	cur, err := s.coll(coll).Find(ctx, toBSON(filter), opts)
	if err != nil {
		return storeErr("find documents", err)
	}
	if err := cur.All(ctx, out); err != nil {
		return storeErr("decode documents", err)
	}
	return nil
}

func (s *DocumentStore) Insert(ctx context.Context, coll domain.Collection, doc domain.Document) error {
	if _, err := s.coll(coll).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return storeErr("insert document", err)
	}
	return nil
}

func (s *DocumentStore) UpdateFields(ctx context.Context, coll domain.Collection, id string, fields map[string]any, out any) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	res := s.coll(coll).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter())
	if err := decodeResult(res, out, "update fields"); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *DocumentStore) DeleteByID(ctx context.Context, coll domain.Collection, id string) error {
	res, err := s.coll(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr("delete document", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *DocumentStore) AppendToSubcollection(ctx context.Context, coll domain.Collection, id, path string, elem any, opts domain.AppendOptions, out any) error {
	filter := bson.M{"_id": id}
	if opts.Unless != nil {
		filter[path+"."+opts.Unless.Field] = bson.M{"$ne": opts.Unless.Value}
	}

	push := bson.M{path: elem}
	if opts.AtFront {
		push = bson.M{path: bson.M{"$each": bson.A{elem}, "$position": 0}}
	}

	res := s.coll(coll).FindOneAndUpdate(ctx, filter, bson.M{"$push": push}, returnAfter())
	err := decodeResult(res, out, "append to subcollection")
	if errors.Is(err, domain.ErrNotFound) && opts.Unless != nil {
		return s.classifyMiss(ctx, coll, id, domain.ErrElementExists)
	}
	return err
}

func (s *DocumentStore) RemoveFromSubcollection(ctx context.Context, coll domain.Collection, id, path string, m domain.Match, out any) error {
	filter := bson.M{"_id": id, path + "." + m.Field: m.Value}
	update := bson.M{"$pull": bson.M{path: bson.M{m.Field: m.Value}}}

	res := s.coll(coll).FindOneAndUpdate(ctx, filter, update, returnAfter())
	err := decodeResult(res, out, "remove from subcollection")
	if errors.Is(err, domain.ErrNotFound) {
		return s.classifyMiss(ctx, coll, id, domain.ErrElementNotFound)
	}
	return err
}

// classifyMiss tells a missing document apart from a guard that did not
// match on an existing one.
func (s *DocumentStore) classifyMiss(ctx context.Context, coll domain.Collection, id string, guardErr error) error {
	n, err := s.coll(coll).CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return storeErr("count documents", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return guardErr
}

func decodeResult(res *mongo.SingleResult, out any, op string) error {
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrNotFound
		}
		return storeErr(op, err)
	}
	if out == nil {
		return nil
	}
	if err := res.Decode(out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

func toBSON(f domain.Filter) bson.M {
	m := bson.M{}
	for k, v := range f {
		m[k] = v
	}
	return m
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, op, err)
}
