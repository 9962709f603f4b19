package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/charmbracelet/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is a Store backed by Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

var _ Store = (*FirestoreStore)(nil)

// NewFirestoreStore connects to Firestore in the given project. The returned
// teardown closes the client.
func NewFirestoreStore(ctx context.Context, projectID string) (*FirestoreStore, func(), error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	log.Info("Connected to Firestore", "project", projectID)
	teardown := func() {
		if err := client.Close(); err != nil {
			log.Error("Failed to close firestore client", "error", err)
		}
	}
	return &FirestoreStore{client: client}, teardown, nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Record, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to get %s/%s: %w", ErrUnavailable, collection, id, err)
	}
	return Record(snap.Data()), nil
}

func (s *FirestoreStore) Put(ctx context.Context, collection, id string, rec Record) error {
	if _, err := checkSize(rec); err != nil {
		return err
	}
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, map[string]any(rec)); err != nil {
		return fmt.Errorf("%w: failed to put %s/%s: %w", ErrUnavailable, collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, partial Record) error {
	if _, err := checkSize(partial); err != nil {
		return err
	}
	ref := s.client.Collection(collection).Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
			}
			return err
		}
		return tx.Set(ref, map[string]any(partial), firestore.MergeAll)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: failed to update %s/%s: %w", ErrUnavailable, collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("%w: failed to delete %s/%s: %w", ErrUnavailable, collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, q Query) ([]Record, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, string(f.Op), f.Value)
	}
	if q.OrderBy != nil {
		dir := firestore.Asc
		if q.OrderBy.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy.Field, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query %s: %w", ErrUnavailable, collection, err)
	}
	records := make([]Record, 0, len(snaps))
	for _, snap := range snaps {
		records = append(records, Record(snap.Data()))
	}
	return records, nil
}
