package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bacheliers/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreRegistrationStore keeps one document per identity in a Firestore collection.
type FirestoreRegistrationStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreRegistrationStore(client *firestore.Client, collection string) *FirestoreRegistrationStore {
	return &FirestoreRegistrationStore{client: client, collection: collection}
}

func (s *FirestoreRegistrationStore) doc(identity string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(identity)
}

func (s *FirestoreRegistrationStore) Get(ctx context.Context, identity string) (*models.Registration, error) {
	snap, err := s.doc(identity).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeSnapshot(snap)
}

func (s *FirestoreRegistrationStore) FindByCorrelation(ctx context.Context, correlationID string) (*models.Registration, error) {
	iter := s.client.Collection(s.collection).
		Where(models.FieldCorrelationID, "==", correlationID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()
	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(snap)
}

func (s *FirestoreRegistrationStore) Merge(ctx context.Context, identity string, fields models.Fields) error {
	ref := s.doc(identity)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		data := make(map[string]interface{}, len(fields)+3)
		for k, v := range fields {
			data[k] = v
		}
		data[models.FieldIdentity] = identity
		data[models.FieldUpdatedAt] = firestore.ServerTimestamp
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) != codes.NotFound {
				return err
			}
			data[models.FieldCreatedAt] = firestore.ServerTimestamp
		}
		return tx.Set(ref, data, firestore.MergeAll)
	})
}

func (s *FirestoreRegistrationStore) Update(ctx context.Context, identity string, fields models.Fields) error {
	_, err := s.doc(identity).Update(ctx, toUpdates(fields))
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (s *FirestoreRegistrationStore) Transact(ctx context.Context, identity string, fn func(r *models.Registration) (models.Fields, error)) error {
	ref := s.doc(identity)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		reg, err := decodeSnapshot(snap)
		if err != nil {
			return err
		}
		fields, err := fn(reg)
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Update(ref, toUpdates(fields))
	})
}

func toUpdates(fields models.Fields) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields)+1)
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	return append(updates, firestore.Update{Path: models.FieldUpdatedAt, Value: firestore.ServerTimestamp})
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (*models.Registration, error) {
	var reg models.Registration
	if err := snap.DataTo(&reg); err != nil {
		return nil, fmt.Errorf("decode registration %s: %w", snap.Ref.ID, err)
	}
	if reg.Identity == "" {
		reg.Identity = snap.Ref.ID
	}
	return &reg, nil
}

// FirestoreEventLog appends webhook deliveries to a Firestore collection.
type FirestoreEventLog struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreEventLog(client *firestore.Client, collection string) *FirestoreEventLog {
	return &FirestoreEventLog{client: client, collection: collection}
}

func (l *FirestoreEventLog) Record(ctx context.Context, e *models.PaymentEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, _, err := l.client.Collection(l.collection).Add(ctx, e)
	return err
}
