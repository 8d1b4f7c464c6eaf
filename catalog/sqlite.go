package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/segmentio/encoding/json"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/lehigh-university-libraries/ddimport/record"
	"github.com/lehigh-university-libraries/ddimport/schema"
)

//go:embed migrations/*.sql
var migrations embed.FS

const datasetColumns = `id, name, title, state, owner_org, creator_user, body, created, modified`

// SQLiteStore implements Registry on SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string

	schema      schema.Provider
	datasetType string
	now         func() time.Time
}

var _ Registry = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store that validates datasets against the
// schema of datasetType. A nil provider only enforces the built-in rules.
func NewSQLiteStore(provider schema.Provider, datasetType string) *SQLiteStore {
	return &SQLiteStore{
		schema:      provider,
		datasetType: datasetType,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// OpenDB uses an existing connection, e.g. one shared with other code.
func (s *SQLiteStore) OpenDB(db *sql.DB) {
	s.db = db
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs all pending database migrations.
func (s *SQLiteStore) Migrate() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Find looks a dataset up by id or name.
func (s *SQLiteStore) Find(ctx context.Context, idOrName string) (*record.Dataset, bool, error) {
	if s.db == nil {
		return nil, false, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+datasetColumns+` FROM datasets WHERE id = ? OR name = ? LIMIT 1`,
		idOrName, idOrName,
	)
	ds, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("finding dataset %s: %w", idOrName, err)
	}

	resources, err := s.resources(ctx, ds.ID)
	if err != nil {
		return nil, false, err
	}
	ds.Resources = resources
	return ds, true, nil
}

// Create validates and stores a new dataset. The dataset id is assigned
// here; any id on the input is ignored.
func (s *SQLiteStore) Create(ctx context.Context, ds *record.Dataset) (*record.Dataset, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if errs := s.Validate(ds); len(errs) > 0 {
		return nil, errs
	}

	stored := ds.Clone()
	stored.ID = uuid.New().String()
	stored.Created = s.now()
	stored.Modified = stored.Created

	body, err := datasetBody(stored)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (`+datasetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.Name, stored.Title, stored.State, stored.OwnerOrg, stored.CreatorUser,
		body, formatTime(stored.Created), formatTime(stored.Modified),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating dataset %s: %w", stored.Name, ErrConflict)
		}
		return nil, fmt.Errorf("creating dataset %s: %w", stored.Name, err)
	}

	for i := range stored.Resources {
		stored.Resources[i].ID = uuid.New().String()
		if err := insertResource(ctx, tx, stored.ID, i, stored.Resources[i], nil); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing dataset %s: %w", stored.Name, err)
	}
	return stored, nil
}

// Update validates and replaces a stored dataset. Resources keep their
// stored content when their id is unchanged; resources missing from ds are
// removed.
func (s *SQLiteStore) Update(ctx context.Context, ds *record.Dataset) (*record.Dataset, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if errs := s.Validate(ds); len(errs) > 0 {
		return nil, errs
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := scanDataset(tx.QueryRowContext(ctx,
		`SELECT `+datasetColumns+` FROM datasets WHERE id = ?`, ds.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("updating dataset %s: %w", ds.ID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", ds.ID, err)
	}

	stored := ds.Clone()
	stored.CreatorUser = existing.CreatorUser
	stored.Created = existing.Created
	stored.Modified = s.now()

	body, err := datasetBody(stored)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE datasets SET name = ?, title = ?, state = ?, owner_org = ?, body = ?, modified = ? WHERE id = ?`,
		stored.Name, stored.Title, stored.State, stored.OwnerOrg, body, formatTime(stored.Modified), stored.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("updating dataset %s: %w", stored.Name, ErrConflict)
		}
		return nil, fmt.Errorf("updating dataset %s: %w", stored.Name, err)
	}

	current, err := resourceIDs(ctx, tx, stored.ID)
	if err != nil {
		return nil, err
	}

	kept := make(map[string]bool, len(stored.Resources))
	for i := range stored.Resources {
		res := &stored.Resources[i]
		if res.ID != "" && current[res.ID] {
			body, err := json.Marshal(res.ToMap())
			if err != nil {
				return nil, fmt.Errorf("encoding resource %s: %w", res.ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE resources SET position = ?, body = ? WHERE id = ?`, i, string(body), res.ID,
			); err != nil {
				return nil, fmt.Errorf("updating resource %s: %w", res.ID, err)
			}
			kept[res.ID] = true
			continue
		}
		res.ID = uuid.New().String()
		if err := insertResource(ctx, tx, stored.ID, i, *res, nil); err != nil {
			return nil, err
		}
		kept[res.ID] = true
	}

	for id := range current {
		if kept[id] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("removing resource %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing dataset %s: %w", stored.Name, err)
	}
	return stored, nil
}

// AttachResource appends a resource to the named dataset, storing content
// when given.
func (s *SQLiteStore) AttachResource(ctx context.Context, datasetName string, res record.Resource, content io.Reader) (*record.Resource, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var data []byte
	if content != nil {
		var err error
		data, err = io.ReadAll(content)
		if err != nil {
			return nil, fmt.Errorf("reading resource content: %w", err)
		}
		res.Size = int64(len(data))
	}
	res.ID = uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var datasetID string
	var position int
	err = tx.QueryRowContext(ctx,
		`SELECT d.id, COALESCE(MAX(r.position) + 1, 0)
		   FROM datasets d LEFT JOIN resources r ON r.dataset_id = d.id
		  WHERE d.name = ? OR d.id = ?
		  GROUP BY d.id`,
		datasetName, datasetName,
	).Scan(&datasetID, &position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attaching resource to %s: %w", datasetName, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", datasetName, err)
	}

	if err := insertResource(ctx, tx, datasetID, position, res, data); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE datasets SET modified = ? WHERE id = ?`, formatTime(s.now()), datasetID,
	); err != nil {
		return nil, fmt.Errorf("touching dataset %s: %w", datasetName, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing resource for %s: %w", datasetName, err)
	}
	return &res, nil
}

// ResourceContent returns the stored bytes of a resource.
func (s *SQLiteStore) ResourceContent(ctx context.Context, resourceID string) ([]byte, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var content []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM resources WHERE id = ?`, resourceID,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resource %s: %w", resourceID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading resource %s: %w", resourceID, err)
	}
	return content, nil
}

func (s *SQLiteStore) resources(ctx context.Context, datasetID string) ([]record.Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, body FROM resources WHERE dataset_id = ? ORDER BY position`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("listing resources of %s: %w", datasetID, err)
	}
	defer rows.Close()

	var out []record.Resource
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(body), &m); err != nil {
			return nil, fmt.Errorf("decoding resource %s: %w", id, err)
		}
		res := record.ResourceFromMap(m)
		res.ID = id
		out = append(out, res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(row rowScanner) (*record.Dataset, error) {
	var id, name, title, state, ownerOrg, creator, body, created, modified string
	if err := row.Scan(&id, &name, &title, &state, &ownerOrg, &creator, &body, &created, &modified); err != nil {
		return nil, err
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, fmt.Errorf("decoding dataset %s: %w", name, err)
	}

	ds := record.DatasetFromMap(m)
	ds.ID = id
	ds.Name = name
	ds.Title = title
	ds.State = state
	ds.OwnerOrg = ownerOrg
	ds.CreatorUser = creator
	ds.Created = parseTime(created)
	ds.Modified = parseTime(modified)
	return ds, nil
}

func resourceIDs(ctx context.Context, tx *sql.Tx, datasetID string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM resources WHERE dataset_id = ?`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("listing resources of %s: %w", datasetID, err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning resource id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func insertResource(ctx context.Context, tx *sql.Tx, datasetID string, position int, res record.Resource, content []byte) error {
	body, err := json.Marshal(res.ToMap())
	if err != nil {
		return fmt.Errorf("encoding resource %s: %w", res.Name, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO resources (id, dataset_id, position, body, content) VALUES (?, ?, ?, ?, ?)`,
		res.ID, datasetID, position, string(body), content,
	)
	if err != nil {
		return fmt.Errorf("inserting resource %s: %w", res.Name, err)
	}
	return nil
}

// datasetBody encodes the dataset without its resources, which live in
// their own table.
func datasetBody(ds *record.Dataset) (string, error) {
	m := ds.ToMap()
	delete(m, "resources")

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(m); err != nil {
		return "", fmt.Errorf("encoding dataset %s: %w", ds.Name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
