package decks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type deckRecord struct {
	ID      string `gorm:"primaryKey;size:36"`
	Name    string `gorm:"index"`
	Body    string `gorm:"type:jsonb;not null"`
	SavedAt time.Time
}

func (deckRecord) TableName() string { return "decks" }

// GormStore persists decks in postgres.
type GormStore struct {
	db    *gorm.DB
	stamp stamper
}

// OpenPostgres connects with the given DSN and migrates the decks table.
func OpenPostgres(dsn string, opts ...Option) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewGormStore(db, opts...)
}

func NewGormStore(db *gorm.DB, opts ...Option) (*GormStore, error) {
	if err := db.AutoMigrate(&deckRecord{}); err != nil {
		return nil, fmt.Errorf("migrate decks: %w", err)
	}
	return &GormStore{db: db, stamp: newStamper(opts)}, nil
}

func (g *GormStore) List(ctx context.Context) ([]Deck, error) {
	var rows []deckRecord
	if err := g.db.WithContext(ctx).Order("saved_at asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	out := make([]Deck, 0, len(rows))
	for _, row := range rows {
		d, err := row.toDeck()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (g *GormStore) Create(ctx context.Context, fields map[string]json.RawMessage) (Deck, error) {
	d, row, err := g.newRecord(fields)
	if err != nil {
		return Deck{}, err
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Deck{}, fmt.Errorf("create deck: %w", err)
	}
	return d, nil
}

func (g *GormStore) newRecord(fields map[string]json.RawMessage) (Deck, deckRecord, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return Deck{}, deckRecord{}, fmt.Errorf("%w: %v", ErrInvalidDeck, err)
	}
	d := g.stamp.stamp(fields)
	return d, deckRecord{ID: d.ID, Name: d.Name(), Body: string(body), SavedAt: d.SavedAt}, nil
}

func (g *GormStore) Delete(ctx context.Context, id string) error {
	res := g.db.WithContext(ctx).Delete(&deckRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete deck: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r deckRecord) toDeck() (Deck, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(r.Body), &fields); err != nil {
		return Deck{}, errors.Join(ErrInvalidDeck, fmt.Errorf("deck %s: %w", r.ID, err))
	}
	return Deck{ID: r.ID, SavedAt: r.SavedAt, Fields: fields}, nil
}
