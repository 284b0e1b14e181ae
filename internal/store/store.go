// Package store persists canvases over database/sql. SQLite is the default;
// PostgreSQL and MySQL are selected by driver name.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"easel/internal/element"

	"github.com/google/uuid"
)

const DefaultName = "Untitled"

var (
	ErrNotFound    = errors.New("canvas not found")
	ErrInvalidSize = errors.New("canvas width and height must be positive")
)

type Canvas struct {
	ID        string            `json:"_id"`
	Name      string            `json:"name"`
	Width     float64           `json:"width"`
	Height    float64           `json:"height"`
	Elements  []element.Element `json:"elements"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (c Canvas) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return ErrInvalidSize
	}
	return nil
}

type Summary struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if d.name == "sqlite" {
		// one writer at a time
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", d.name, err)
	}
	s := &Store{db: db, dialect: d, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Driver() string {
	return s.dialect.name
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.dialect.name, err)
		}
	}
	return nil
}

func (s *Store) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(q), args...)
}

// Create inserts c under a fresh id and returns it.
func (s *Store) Create(ctx context.Context, c Canvas) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(c.Name) == "" {
		c.Name = DefaultName
	}
	payload, err := encodeElements(c.Elements)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := s.now().UnixMilli()
	_, err = s.exec(ctx,
		`INSERT INTO canvases (id, name, width, height, elements_json, created_at_unixms, updated_at_unixms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, c.Name, c.Width, c.Height, payload, now, now)
	if err != nil {
		return "", fmt.Errorf("insert canvas: %w", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (Canvas, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT id, name, width, height, elements_json, created_at_unixms, updated_at_unixms
		FROM canvases WHERE id = ?`), id)
	return scanCanvas(row)
}

// Update replaces the stored state of a canvas and returns the persisted name.
func (s *Store) Update(ctx context.Context, id string, c Canvas) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(c.Name) == "" {
		c.Name = DefaultName
	}
	payload, err := encodeElements(c.Elements)
	if err != nil {
		return "", err
	}
	res, err := s.exec(ctx,
		`UPDATE canvases SET name = ?, width = ?, height = ?, elements_json = ?, updated_at_unixms = ?
		WHERE id = ?`,
		c.Name, c.Width, c.Height, payload, s.now().UnixMilli(), id)
	if err != nil {
		return "", fmt.Errorf("update canvas %s: %w", id, err)
	}
	if err := requireRow(ctx, s, res, id); err != nil {
		return "", err
	}
	return c.Name, nil
}

// AddElement appends el to the canvas's element list.
func (s *Store) AddElement(ctx context.Context, id string, el element.Element) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, s.dialect.rebind(
		"SELECT elements_json FROM canvases WHERE id = ?"+s.dialect.forUpdate), id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load elements of %s: %w", id, err)
	}
	els, err := decodeElements(raw)
	if err != nil {
		return err
	}
	payload, err := encodeElements(append(els, el))
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.dialect.rebind(
		"UPDATE canvases SET elements_json = ?, updated_at_unixms = ? WHERE id = ?"),
		payload, s.now().UnixMilli(), id); err != nil {
		return fmt.Errorf("append element to %s: %w", id, err)
	}
	return tx.Commit()
}

// List returns every canvas, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM canvases ORDER BY created_at_unixms DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list canvases: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Name); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM canvases").Scan(&n); err != nil {
		return 0, fmt.Errorf("count canvases: %w", err)
	}
	return n, nil
}

// requireRow turns a zero-row update into ErrNotFound. MySQL reports zero
// affected rows when nothing changed, so existence is checked separately.
func requireRow(ctx context.Context, s *Store, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err == nil && n > 0 {
		return nil
	}
	var one int
	err = s.db.QueryRowContext(ctx, s.dialect.rebind("SELECT 1 FROM canvases WHERE id = ?"), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCanvas(row scanner) (Canvas, error) {
	var (
		c                  Canvas
		raw                string
		created, updatedAt int64
	)
	err := row.Scan(&c.ID, &c.Name, &c.Width, &c.Height, &raw, &created, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Canvas{}, ErrNotFound
	}
	if err != nil {
		return Canvas{}, fmt.Errorf("scan canvas: %w", err)
	}
	if c.Elements, err = decodeElements(raw); err != nil {
		return Canvas{}, err
	}
	c.CreatedAt = time.UnixMilli(created).UTC()
	c.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return c, nil
}

func encodeElements(els []element.Element) (string, error) {
	if els == nil {
		els = []element.Element{}
	}
	b, err := json.Marshal(els)
	if err != nil {
		return "", fmt.Errorf("encode elements: %w", err)
	}
	return string(b), nil
}

func decodeElements(raw string) ([]element.Element, error) {
	els := []element.Element{}
	if raw == "" {
		return els, nil
	}
	if err := json.Unmarshal([]byte(raw), &els); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}
	return els, nil
}
