package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tailor-backend/internal/query"
)

// PostgresStore keeps every collection in the documents table, one JSONB row
// per document. Timestamps come from the database clock.
type PostgresStore struct {
	DB   *pgxpool.Pool
	feed Feed
}

func NewPostgresStore(db *pgxpool.Pool, feed Feed) *PostgresStore {
	if feed == nil {
		feed = NewLocalFeed()
	}
	return &PostgresStore{DB: db, feed: feed}
}

func (s *PostgresStore) Fetch(ctx context.Context, q query.Query) (docs []Document, err error) {
	defer observe("fetch", q.Path, time.Now(), &err)

	sql, args, err := buildSelect(q)
	if err != nil {
		return nil, newError(CodeInvalidArgument, "fetch", q.Path, err)
	}

	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("fetch", q.Path, err)
	}
	defer rows.Close()

	docs = []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, mapError("fetch", q.Path, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("fetch", q.Path, err)
	}
	return docs, nil
}

func (s *PostgresStore) Subscribe(ctx context.Context, q query.Query, onChange func([]Document), onError func(error)) Unsubscribe {
	return subscribe(ctx, s.feed, s.Fetch, q, onChange, onError)
}

func (s *PostgresStore) Get(ctx context.Context, path, id string) (doc Document, err error) {
	defer observe("get", path, time.Now(), &err)

	row := s.DB.QueryRow(ctx,
		`SELECT id, data, created_at, updated_at
         FROM documents WHERE collection=$1 AND id=$2`, path, id)
	doc, err = scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, NotFound("get", path, id)
	}
	if err != nil {
		return Document{}, mapError("get", path, err)
	}
	return doc, nil
}

func (s *PostgresStore) Insert(ctx context.Context, path string, fields map[string]any) (id string, err error) {
	defer observe("insert", path, time.Now(), &err)

	data, err := encodeJSON(stripReserved(fields))
	if err != nil {
		return "", newError(CodeInvalidArgument, "insert", path, err)
	}

	id = uuid.NewString()
	_, err = s.DB.Exec(ctx,
		`INSERT INTO documents(collection, id, data)
         VALUES($1, $2, $3::jsonb)`,
		path, id, string(data))
	if err != nil {
		return "", mapError("insert", path, err)
	}

	s.publish(ctx, path)
	return id, nil
}

// Update merges the submitted top-level fields into the stored document.
func (s *PostgresStore) Update(ctx context.Context, path, id string, fields map[string]any) (err error) {
	defer observe("update", path, time.Now(), &err)

	patch, err := encodeJSON(stripReserved(fields))
	if err != nil {
		return newError(CodeInvalidArgument, "update", path, err)
	}

	tag, err := s.DB.Exec(ctx,
		`UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
         WHERE collection=$1 AND id=$2`,
		path, id, string(patch))
	if err != nil {
		return mapError("update", path, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("update", path, id)
	}

	s.publish(ctx, path)
	return nil
}

// Delete removes the document. Deleting a missing document succeeds.
func (s *PostgresStore) Delete(ctx context.Context, path, id string) (err error) {
	defer observe("delete", path, time.Now(), &err)

	tag, err := s.DB.Exec(ctx, `DELETE FROM documents WHERE collection=$1 AND id=$2`, path, id)
	if err != nil {
		return mapError("delete", path, err)
	}
	if tag.RowsAffected() > 0 {
		s.publish(ctx, path)
	}
	return nil
}

// Collections lists collection names present in the table.
func (s *PostgresStore) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT DISTINCT collection FROM documents ORDER BY collection`)
	if err != nil {
		return nil, mapError("collections", "", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapError("collections", "", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *PostgresStore) publish(ctx context.Context, path string) {
	if err := s.feed.Publish(context.WithoutCancel(ctx), path); err != nil {
		zap.L().Debug("change signal not published", zap.String("component", "docstore"), zap.String("path", path), zap.Error(err))
	}
}

func scanDocument(row pgx.Row) (Document, error) {
	var (
		id               string
		data             []byte
		created, updated time.Time
	)
	if err := row.Scan(&id, &data, &created, &updated); err != nil {
		return Document{}, err
	}

	fields := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			return Document{}, err
		}
	}
	fields["createdAt"] = created.UTC()
	fields["updatedAt"] = updated.UTC()
	return Document{ID: id, Fields: fields}, nil
}

// mapError classifies driver errors into store codes.
func mapError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42501":
			return newError(CodePermissionDenied, op, path, err)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"), strings.HasPrefix(pgErr.Code, "53"):
			return newError(CodeUnavailable, op, path, err)
		case strings.HasPrefix(pgErr.Code, "22"):
			return newError(CodeInvalidArgument, op, path, err)
		default:
			return newError(CodeInternal, op, path, err)
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return newError(CodeUnavailable, op, path, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.SafeToRetry(err) {
		return newError(CodeUnavailable, op, path, err)
	}
	return newError(CodeInternal, op, path, err)
}
