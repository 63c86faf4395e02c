package profile

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UsersCollection is the Firestore collection holding one document per uid.
const UsersCollection = "users"

type storeFirestore struct {
	client *firestore.Client
}

// NewStoreFirestore returns a Store over the users/{uid} documents.
func NewStoreFirestore(client *firestore.Client) Store {
	return &storeFirestore{client: client}
}

func (s *storeFirestore) doc(uid string) *firestore.DocumentRef {
	return s.client.Collection(UsersCollection).Doc(uid)
}

func (s *storeFirestore) Get(ctx context.Context, uid string) (*Record, error) {
	snap, err := s.doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", uid, err)
	}

	var r Record
	if err := snap.DataTo(&r); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", uid, err)
	}
	if r.UID == "" {
		r.UID = uid
	}
	return &r, nil
}

func (s *storeFirestore) Set(ctx context.Context, r *Record) error {
	if _, err := s.doc(r.UID).Set(ctx, r); err != nil {
		return fmt.Errorf("set profile %s: %w", r.UID, err)
	}
	return nil
}

// Create writes the document only when it does not exist yet.
func (s *storeFirestore) Create(ctx context.Context, r *Record) (bool, error) {
	_, err := s.doc(r.UID).Create(ctx, r)
	if status.Code(err) == codes.AlreadyExists {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create profile %s: %w", r.UID, err)
	}
	return true, nil
}

// Merge updates only the named fields. Update fails on a missing document,
// which is reported as ErrNotFound.
func (s *storeFirestore) Merge(ctx context.Context, uid string, fields Fields) error {
	updates, err := firestoreUpdates(fields)
	if err != nil {
		return fmt.Errorf("merge profile %s: %w", uid, err)
	}
	if len(updates) == 0 {
		return nil
	}

	_, err = s.doc(uid).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("merge profile %s: %w", uid, err)
	}
	return nil
}

// firestoreUpdates validates fields against the model and flattens pointer
// values so nil pointers become explicit nulls.
func firestoreUpdates(fields Fields) ([]firestore.Update, error) {
	var scratch Record
	if err := fields.Apply(&scratch); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if name == FieldUID {
			return nil, fmt.Errorf("field %q is not mergeable", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	updates := make([]firestore.Update, 0, len(names))
	for _, name := range names {
		updates = append(updates, firestore.Update{Path: name, Value: flatten(fields[name])})
	}
	return updates, nil
}

func flatten(v any) any {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return nil
		}
		return *p
	case *int:
		if p == nil {
			return nil
		}
		return int64(*p)
	case int:
		return int64(p)
	}
	return v
}
