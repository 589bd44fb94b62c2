// Package quotesessionrepo is the SQL fallback store for quote sessions,
// used when no Redis is configured. Expired rows are invisible to Get and are
// removed by PurgeExpired, which a cron job calls periodically.
package quotesessionrepo

import (
	"context"
	"errors"
	"time"

	"shipping/internal/adapters/out/quotesession"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/quote"
	"shipping/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuoteSessionDTO struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primaryKey"`
	Document  datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false"`
	ExpiresAt time.Time      `gorm:"index"`
}

func (QuoteSessionDTO) TableName() string {
	return "quote_sessions"
}

type GormQuoteSessionStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormQuoteSessionStore(db *gorm.DB, now func() time.Time) *GormQuoteSessionStore {
	if now == nil {
		now = time.Now
	}
	return &GormQuoteSessionStore{db: db, now: now}
}

func (s *GormQuoteSessionStore) Save(ctx context.Context, session *quote.Session) error {
	doc, err := quotesession.Marshal(session)
	if err != nil {
		return err
	}
	dto := QuoteSessionDTO{
		ID:        session.ID().Bytes(),
		Document:  doc,
		CreatedAt: session.CreatedAt(),
		ExpiresAt: session.ExpiresAt(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&dto).Error
}

func (s *GormQuoteSessionStore) Get(ctx context.Context, id kernel.UUID) (*quote.Session, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto QuoteSessionDTO
	err := s.db.WithContext(ctx).
		First(&dto, "id = ? AND expires_at > ?", id.Bytes(), s.now().UTC()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("quote session", id.String())
		}
		return nil, err
	}
	return quotesession.Unmarshal(dto.Document)
}

func (s *GormQuoteSessionStore) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&QuoteSessionDTO{}, "id = ?", id.Bytes()).Error
}

// PurgeExpired deletes sessions that expired before now and reports how many
// rows were removed.
func (s *GormQuoteSessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Delete(&QuoteSessionDTO{}, "expires_at <= ?", s.now().UTC())
	return result.RowsAffected, result.Error
}
