package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"quipt/internal/core/domain"
	"quipt/internal/core/port"
	"time"
)

type sqlHashRegistry struct {
	db SQLQuerier
}

// NewSQLHashRegistry creates sqlHashRegistry that implements port.HashRegistry
func NewSQLHashRegistry(db SQLQuerier) port.HashRegistry {
	return &sqlHashRegistry{db: db}
}

const hashColumns = `hash, id, state, original_uploader, source_id, created_at, updated_at`

// Get returns the record for hash
func (s *sqlHashRegistry) Get(ctx context.Context, hash domain.ContentHash) (*domain.HashRecord, error) {
	query := `SELECT ` + hashColumns + ` FROM media_hashes WHERE hash = $1`

	record, err := scanHashRecord(s.db.QueryRowContext(ctx, query, hash.Bytes()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHashNotFound
		}
		return nil, err
	}
	return record, nil
}

// CreateIfAbsent claims hash for id. When another caller already holds the hash,
// its record is returned with created set to false.
func (s *sqlHashRegistry) CreateIfAbsent(ctx context.Context, hash domain.ContentHash, id string, uploader string) (*domain.HashRecord, bool, error) {
	query := `
		INSERT INTO media_hashes (hash, id, state, original_uploader)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (hash) DO NOTHING
		RETURNING ` + hashColumns

	record, err := scanHashRecord(s.db.QueryRowContext(ctx, query, hash.Bytes(), id, domain.HashStatePending, uploader))
	if err == nil {
		return record, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	existing, err := s.Get(ctx, hash)
	if err != nil {
		return nil, false, fmt.Errorf("could not read conflicting hash: %w", err)
	}
	return existing, false, nil
}

// MarkValidated moves a pending hash owned by id to validated
func (s *sqlHashRegistry) MarkValidated(ctx context.Context, hash domain.ContentHash, id string) error {
	query := `UPDATE media_hashes SET state = $1, updated_at = now() WHERE hash = $2 AND id = $3 AND state = $4`

	result, err := s.db.ExecContext(ctx, query, domain.HashStateValidated, hash.Bytes(), id, domain.HashStatePending)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	record, err := s.classify(ctx, hash, id)
	if err != nil {
		return err
	}
	if record.Processed() {
		return domain.ErrAlreadyProcessed
	}
	return nil
}

// MarkProcessed publishes a hash owned by id
func (s *sqlHashRegistry) MarkProcessed(ctx context.Context, hash domain.ContentHash, id string) error {
	query := `UPDATE media_hashes SET state = $1, updated_at = now() WHERE hash = $2 AND id = $3 AND state <> $1`

	result, err := s.db.ExecContext(ctx, query, domain.HashStatePublished, hash.Bytes(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	if _, err := s.classify(ctx, hash, id); err != nil {
		return err
	}
	return domain.ErrAlreadyProcessed
}

// classify explains why a conditional transition matched no row
func (s *sqlHashRegistry) classify(ctx context.Context, hash domain.ContentHash, id string) (*domain.HashRecord, error) {
	record, err := s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	if record.ID != id {
		return nil, fmt.Errorf("%w: %s", domain.ErrHashOwnerMismatch, record.ID)
	}
	return record, nil
}

// RecordDerivative registers the hash of a transcoded output as already published under id,
// so uploading that exact file later resolves to the existing derivatives.
func (s *sqlHashRegistry) RecordDerivative(ctx context.Context, hash domain.ContentHash, id string, uploader string) (bool, error) {
	query := `
		INSERT INTO media_hashes (hash, id, state, original_uploader, source_id)
		VALUES ($1, $2, $3, $4, $2)
		ON CONFLICT (hash) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query, hash.Bytes(), id, domain.HashStatePublished, uploader)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// FindStalePending lists pending hashes untouched since before whose raw object was not
// checked since before either. A purged hash comes back once per window since a reissued
// credential may have stored a new raw object under its id.
func (s *sqlHashRegistry) FindStalePending(ctx context.Context, before time.Time, limit int) ([]domain.HashRecord, error) {
	query := `
		SELECT ` + hashColumns + `
		FROM media_hashes
		WHERE state = $1 AND updated_at < $2 AND (raw_purged_at IS NULL OR raw_purged_at < $2)
		ORDER BY COALESCE(raw_purged_at, updated_at)
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, domain.HashStatePending, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.HashRecord
	for rows.Next() {
		record, err := scanHashRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// MarkRawPurged stamps the time the raw upload of hash was removed
func (s *sqlHashRegistry) MarkRawPurged(ctx context.Context, hash domain.ContentHash) error {
	query := `UPDATE media_hashes SET raw_purged_at = now() WHERE hash = $1`

	result, err := s.db.ExecContext(ctx, query, hash.Bytes())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHashNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type dbHashRecord struct {
	Hash             []byte         `db:"hash"`
	ID               string         `db:"id"`
	State            string         `db:"state"`
	OriginalUploader string         `db:"original_uploader"`
	SourceID         sql.NullString `db:"source_id"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func scanHashRecord(row rowScanner) (*domain.HashRecord, error) {
	var r dbHashRecord
	if err := row.Scan(
		&r.Hash,
		&r.ID,
		&r.State,
		&r.OriginalUploader,
		&r.SourceID,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return r.ToDomain()
}

// ToDomain converts db obj to domain
func (r *dbHashRecord) ToDomain() (*domain.HashRecord, error) {
	hash, err := domain.ContentHashFromBytes(r.Hash)
	if err != nil {
		return nil, err
	}
	return &domain.HashRecord{
		Hash:             hash,
		ID:               r.ID,
		State:            domain.HashState(r.State),
		OriginalUploader: r.OriginalUploader,
		SourceID:         r.SourceID.String,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}, nil
}
