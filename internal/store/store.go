// Package store is the gorm-backed persistence layer.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

// Store groups the repositories over one database handle.
type Store struct {
	db *gorm.DB

	Users         *UserRepo
	Cities        *CityRepo
	Properties    *PropertyRepo
	Favourites    *FavouriteRepo
	Enquiries     *EnquiryRepo
	Conversations *ConversationRepo
}

// New returns a Store with every repository bound to db.
func New(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepo(db),
		Cities:        NewCityRepo(db),
		Properties:    NewPropertyRepo(db),
		Favourites:    NewFavouriteRepo(db),
		Enquiries:     NewEnquiryRepo(db),
		Conversations: NewConversationRepo(db),
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Tx runs fn against a Store bound to a single transaction.
// Any error returned by fn rolls the transaction back.
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// translate maps gorm sentinel errors onto the store's own.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// userSummary limits a preloaded user to the fields shown beside listings and messages.
func userSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func oldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}
