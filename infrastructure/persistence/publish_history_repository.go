package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/domain/repository"
)

// PublishHistoryRepository keeps published posts in PostgreSQL (native sql.DB)
type PublishHistoryRepository struct {
	db *sql.DB
}

var _ repository.IPublishHistory = (*PublishHistoryRepository)(nil)

func NewPublishHistoryRepository(db *sql.DB) *PublishHistoryRepository {
	return &PublishHistoryRepository{db: db}
}

func (r *PublishHistoryRepository) Record(ctx context.Context, rec *model.PublishRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	var stored sql.NullInt64
	if rec.StoredLength != nil {
		stored = sql.NullInt64{Int64: int64(*rec.StoredLength), Valid: true}
	}
	q := `INSERT INTO linkedin_publish_records (post_urn, author_urn, variant, visibility, sent_length, stored_length, verification, media_count, created_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`
	row := r.db.QueryRowContext(ctx, q, rec.PostURN, rec.AuthorURN, string(rec.Variant), string(rec.Visibility),
		rec.SentLength, stored, string(rec.Verification), rec.MediaCount, rec.CreatedAt)
	if err := row.Scan(&rec.ID); err != nil {
		return fmt.Errorf("inserting publish record: %w", err)
	}
	return nil
}

func (r *PublishHistoryRepository) ListRecent(ctx context.Context, limit int) ([]*model.PublishRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, post_urn, author_urn, variant, visibility, sent_length, stored_length, verification, media_count, created_at
		FROM linkedin_publish_records ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying publish records: %w", err)
	}
	defer rows.Close()

	list := make([]*model.PublishRecord, 0, limit)
	for rows.Next() {
		rec := &model.PublishRecord{}
		var variant, visibility, verification string
		var stored sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.PostURN, &rec.AuthorURN, &variant, &visibility, &rec.SentLength, &stored, &verification, &rec.MediaCount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Variant = model.PostVariant(variant)
		rec.Visibility = model.Visibility(visibility)
		rec.Verification = model.VerificationOutcome(verification)
		if stored.Valid {
			n := int(stored.Int64)
			rec.StoredLength = &n
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
