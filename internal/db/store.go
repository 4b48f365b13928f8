package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrNoRowsAffected = errors.New("statement affected no rows")
)

type Result struct {
	LastInsertID int64
	AffectedRows int64
}

// Statement is one step of a Batch. When MustAffect is set and the statement
// changes no rows, the whole batch is rolled back.
type Statement struct {
	Query      string
	Args       []interface{}
	MustAffect bool
}

func Stmt(query string, args ...interface{}) Statement {
	return Statement{Query: query, Args: args}
}

func MustAffectStmt(query string, args ...interface{}) Statement {
	return Statement{Query: query, Args: args, MustAffect: true}
}

// Store is the only path services take to the database. All SQL goes through
// placeholders; no caller builds values into query text.
type Store struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewStore(database *sqlx.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     database,
		logger: logger,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Query(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := s.db.SelectContext(ctx, dest, query, args...); err != nil {
		s.logger.Error().Err(err).Msg("Query failed")
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}

// QueryOne scans a single row into dest and returns ErrNotFound when the
// query produced none.
func (s *Store) QueryOne(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := s.db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Query failed")
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}

// QueryIn is Query for statements with an "IN (?)" bound to a slice argument.
func (s *Store) QueryIn(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return fmt.Errorf("failed to expand query: %w", err)
	}
	return s.Query(ctx, dest, s.db.Rebind(expanded), expandedArgs...)
}

func (s *Store) Execute(ctx context.Context, query string, args ...interface{}) (Result, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Statement failed")
		return Result{}, fmt.Errorf("database error: %w", err)
	}
	return toResult(res)
}

// Batch runs the statements in one transaction and returns their results in
// order. Any failure rolls back every statement.
func (s *Store) Batch(ctx context.Context, stmts []Statement) ([]Result, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting transaction")
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	results := make([]Result, 0, len(stmts))
	for i, stmt := range stmts {
		res, err := tx.ExecContext(ctx, stmt.Query, stmt.Args...)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		result, err := toResult(res)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		if stmt.MustAffect && result.AffectedRows == 0 {
			return nil, fmt.Errorf("statement %d: %w", i, ErrNoRowsAffected)
		}
		results = append(results, result)
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Error committing transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return results, nil
}

func toResult(res sql.Result) (Result, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read insert id: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return Result{LastInsertID: id, AffectedRows: affected}, nil
}

const mysqlDuplicateEntry = 1062

// IsDuplicateKey reports whether err came from a unique index violation.
func IsDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
