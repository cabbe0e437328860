package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

//go:embed schema.sql
var schemaSQL string

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to Postgres, applies pool settings and verifies the
// connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the idempotent schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// repos binds every repository to one querier.
type repos struct {
	q    querier
	inTx bool
}

func (r repos) Users() ports.UserRepository               { return &UserRepository{q: r.q} }
func (r repos) Animals() ports.AnimalRepository           { return &AnimalRepository{q: r.q, inTx: r.inTx} }
func (r repos) Adoptions() ports.AdoptionRepository       { return &AdoptionRepository{q: r.q, inTx: r.inTx} }
func (r repos) Media() ports.MediaRepository              { return &MediaRepository{q: r.q} }
func (r repos) Applications() ports.ApplicationRepository { return &ApplicationRepository{q: r.q, inTx: r.inTx} }
func (r repos) Fosters() ports.FosterRepository           { return &FosterRepository{q: r.q} }
func (r repos) Outbox() ports.OutboxRepository            { return &OutboxRepository{q: r.q} }

type Store struct {
	repos
	db *sql.DB
}

var _ ports.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{repos: repos{q: db}, db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithinTx runs fn in a transaction. fn's error rolls back, a nil return
// commits.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, repos{q: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError(err, "transaction")
	}
	return nil
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
	pgSerialization       = "40001"
	pgDeadlock            = "40P01"
)

// mapError translates driver errors into domain errors. Anything it does not
// recognise is wrapped and stays internal.
func mapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("%s not found", entity)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return domain.Conflictf("%s conflicts with an existing record", entity)
		case pgForeignKeyViolation:
			return domain.Validationf("%s references a record that does not exist", entity)
		case pgCheckViolation:
			return domain.Validationf("%s has an invalid value", entity)
		case pgInvalidText:
			return domain.NotFoundf("%s not found", entity)
		case pgSerialization, pgDeadlock:
			return domain.Conflictf("%s was modified concurrently, please retry", entity)
		}
	}
	return fmt.Errorf("%s: %w", entity, err)
}

func forUpdate(inTx bool) string {
	if inTx {
		return " FOR UPDATE"
	}
	return ""
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
