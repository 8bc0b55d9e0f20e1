package repositories

import (
	"context"
	"errors"

	"tailor-backend/internal/docstore"
	"tailor-backend/internal/models"
	"tailor-backend/internal/query"
)

// Collection is a typed view over one document collection whose records are
// owned by a user through their userId field.
type Collection[T any] struct {
	Store docstore.Client
	Path  string
}

func NewCollection[T any](store docstore.Client, path string) *Collection[T] {
	return &Collection[T]{Store: store, Path: path}
}

// Create inserts fields owned by userID and returns the new id.
func (r *Collection[T]) Create(ctx context.Context, userID string, fields map[string]any) (string, error) {
	fields["userId"] = userID
	return r.Store.Insert(ctx, r.Path, fields)
}

func (r *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := r.Store.Get(ctx, r.Path, id)
	if err != nil {
		return nil, err
	}
	return decode[T](doc)
}

// GetOwned loads a record and checks that userID owns it.
func (r *Collection[T]) GetOwned(ctx context.Context, userID, id string) (*T, error) {
	doc, err := r.Store.Get(ctx, r.Path, id)
	if err != nil {
		return nil, err
	}
	if doc.UserID() != userID {
		return nil, docstore.PermissionDenied("get", r.Path, errors.New("record belongs to another user"))
	}
	return decode[T](doc)
}

// List returns userID's records matching the extra constraints.
func (r *Collection[T]) List(ctx context.Context, userID string, constraints ...query.Constraint) ([]T, error) {
	q := query.New(r.Path, constraints...).With(query.Where("userId", query.Eq, userID))
	docs, err := r.Store.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := decode[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (r *Collection[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	delete(fields, "userId")
	return r.Store.Update(ctx, r.Path, id, fields)
}

func (r *Collection[T]) Delete(ctx context.Context, id string) error {
	return r.Store.Delete(ctx, r.Path, id)
}

func decode[T any](doc docstore.Document) (*T, error) {
	v, err := models.Decode[T](doc.Flatten())
	if err != nil {
		return nil, err
	}
	return &v, nil
}
