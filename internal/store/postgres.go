package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"commitsonic/internal/logger"
	"commitsonic/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schema string

const (
	insertCommitQuery = `
		INSERT INTO commits (
			id, repo_id, timestamp, author, message, stats,
			primary_language, languages, ci_status, musical_params
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (repo_id, id) DO NOTHING
	`
	updateCIStatusQuery = `
		UPDATE commits SET ci_status = $1, musical_params = $2
		WHERE repo_id = $3 AND id = $4
	`
	recentCommitsQuery = `
		SELECT id, repo_id, timestamp, author, message, stats,
			primary_language, languages, ci_status, musical_params
		FROM commits
		WHERE repo_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`
	getRepoQuery = `
		SELECT full_name, owner, name, webhook_secret, webhook_id, created_at, updated_at
		FROM repositories
		WHERE full_name = $1
	`
	insertRepoQuery = `
		INSERT INTO repositories (full_name, owner, name, webhook_secret, webhook_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (full_name) DO NOTHING
	`
	updateRepoQuery = `
		UPDATE repositories SET owner = $1, name = $2, webhook_secret = $3, webhook_id = $4, updated_at = $5
		WHERE full_name = $6
	`
	getListenerQuery = `
		SELECT username, password, created_at
		FROM listeners
		WHERE username = $1
	`
	insertListenerQuery = `
		INSERT INTO listeners (username, password, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
	`
)

// Postgres stores everything in PostgreSQL through sqlx.
type Postgres struct {
	conn *sqlx.DB
	// Prepared statements cache
	stmtCache struct {
		sync.RWMutex
		statements map[string]*sqlx.Stmt
	}
}

// NewPostgres connects using the POSTGRES_* and DB_* settings.
func NewPostgres() (*Postgres, error) {
	dsn := fmt.Sprintf(
		"user=%s password=%s dbname=%s port=%s host=%s sslmode=disable",
		viper.GetString("POSTGRES_USER"),
		viper.GetString("POSTGRES_PASSWORD"),
		viper.GetString("POSTGRES_DB"),
		viper.GetString("POSTGRES_PORT"),
		viper.GetString("POSTGRES_HOST"),
	)

	logger.Info("Connecting to database",
		zap.String("host", viper.GetString("POSTGRES_HOST")),
		zap.String("database", viper.GetString("POSTGRES_DB")))
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	maxOpenConns := 25
	if val := viper.GetString("DB_MAX_OPEN_CONNS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			maxOpenConns = parsed
		}
	}

	maxIdleConns := 25
	if val := viper.GetString("DB_MAX_IDLE_CONNS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			maxIdleConns = parsed
		}
	}

	connMaxLifetime := 5 * time.Minute
	if val := viper.GetString("DB_CONN_MAX_LIFETIME"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			connMaxLifetime = parsed
		}
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	logger.Info("Database connection established",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime))

	return newPostgres(db), nil
}

func newPostgres(db *sqlx.DB) *Postgres {
	p := &Postgres{conn: db}
	p.stmtCache.statements = make(map[string]*sqlx.Stmt)
	return p
}

// Migrate creates the tables when they do not exist yet.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// getStmt returns a prepared statement from cache or creates a new one
func (p *Postgres) getStmt(ctx context.Context, query string) (*sqlx.Stmt, error) {
	p.stmtCache.RLock()
	stmt, exists := p.stmtCache.statements[query]
	p.stmtCache.RUnlock()

	if exists {
		return stmt, nil
	}

	p.stmtCache.Lock()
	defer p.stmtCache.Unlock()

	if stmt, exists = p.stmtCache.statements[query]; exists {
		return stmt, nil
	}

	stmt, err := p.conn.PreparexContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	p.stmtCache.statements[query] = stmt
	return stmt, nil
}

// CreateCommits stores the whole batch in one transaction. Commits already
// stored keep their CI status and parameters.
func (p *Postgres) CreateCommits(ctx context.Context, commits []models.Commit) error {
	if len(commits) == 0 {
		return nil
	}
	if err := validateCommits(commits); err != nil {
		return err
	}

	tx, err := p.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, insertCommitQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare commit insert statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range commits {
		if _, err := stmt.ExecContext(ctx,
			c.ID,
			c.RepoID,
			c.Timestamp,
			c.Author,
			c.Message,
			c.Stats,
			c.PrimaryLanguage,
			c.Languages,
			string(c.CIStatus),
			c.MusicalParams,
		); err != nil {
			return fmt.Errorf("failed to insert commit %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", ErrTransactionFailed, err)
	}

	logger.Debug("commits stored",
		zap.String("repo", commits[0].RepoID),
		zap.Int("commit_count", len(commits)))
	return nil
}

func (p *Postgres) UpdateCIStatus(ctx context.Context, repoID, commitID string, status models.CIStatus, params models.MusicalParams) error {
	if repoID == "" || commitID == "" {
		return fmt.Errorf("%w: repo id and commit id cannot be empty", ErrInvalidInput)
	}

	res, err := p.conn.ExecContext(ctx, updateCIStatusQuery, string(status), params, repoID, commitID)
	if err != nil {
		return fmt.Errorf("failed to update ci status of %s: %w", commitID, err)
	}
	return requireAffected(res, fmt.Errorf("%w: %s@%s", ErrCommitNotFound, repoID, commitID))
}

func (p *Postgres) RecentCommits(ctx context.Context, repoID string, limit int) ([]models.Commit, error) {
	if repoID == "" {
		return nil, fmt.Errorf("%w: repo id cannot be empty", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 50
	}

	var commits []models.Commit
	if err := p.conn.SelectContext(ctx, &commits, recentCommitsQuery, repoID, limit); err != nil {
		return nil, fmt.Errorf("failed to list commits of %s: %w", repoID, err)
	}
	return commits, nil
}

// GetRepoByFullName runs on every webhook delivery, so it uses a cached
// prepared statement.
func (p *Postgres) GetRepoByFullName(ctx context.Context, fullName string) (*models.Repository, error) {
	if fullName == "" {
		return nil, fmt.Errorf("%w: repository full name cannot be empty", ErrInvalidInput)
	}

	stmt, err := p.getStmt(ctx, getRepoQuery)
	if err != nil {
		return nil, err
	}

	var repo models.Repository
	if err := stmt.GetContext(ctx, &repo, fullName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, fullName)
		}
		return nil, fmt.Errorf("failed to get repository %s: %w", fullName, err)
	}
	return &repo, nil
}

func (p *Postgres) CreateRepo(ctx context.Context, repo *models.Repository) error {
	if err := validateRepo(repo); err != nil {
		return err
	}

	now := time.Now().UTC()
	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = now
	}
	repo.UpdatedAt = now

	res, err := p.conn.ExecContext(ctx, insertRepoQuery,
		repo.FullName, repo.Owner, repo.Name, repo.WebhookSecret, repo.WebhookID,
		repo.CreatedAt, repo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store repository: %w", err)
	}
	return requireAffected(res, fmt.Errorf("%w: repository %s", ErrDuplicate, repo.FullName))
}

func (p *Postgres) UpdateRepo(ctx context.Context, repo *models.Repository) error {
	if err := validateRepo(repo); err != nil {
		return err
	}

	repo.UpdatedAt = time.Now().UTC()
	res, err := p.conn.ExecContext(ctx, updateRepoQuery,
		repo.Owner, repo.Name, repo.WebhookSecret, repo.WebhookID, repo.UpdatedAt,
		repo.FullName,
	)
	if err != nil {
		return fmt.Errorf("failed to update repository: %w", err)
	}
	return requireAffected(res, fmt.Errorf("%w: %s", ErrRepositoryNotFound, repo.FullName))
}

func (p *Postgres) GetListener(ctx context.Context, username string) (*models.Listener, error) {
	var l models.Listener
	if err := p.conn.GetContext(ctx, &l, getListenerQuery, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrListenerNotFound, username)
		}
		return nil, fmt.Errorf("failed to get listener %s: %w", username, err)
	}
	return &l, nil
}

func (p *Postgres) CreateListener(ctx context.Context, listener *models.Listener) error {
	if listener == nil || listener.Username == "" || listener.Password == "" {
		return fmt.Errorf("%w: listener needs a username and password hash", ErrInvalidInput)
	}
	if listener.CreatedAt.IsZero() {
		listener.CreatedAt = time.Now().UTC()
	}

	res, err := p.conn.ExecContext(ctx, insertListenerQuery,
		listener.Username, listener.Password, listener.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store listener: %w", err)
	}
	return requireAffected(res, fmt.Errorf("%w: listener %s", ErrDuplicate, listener.Username))
}

// Close closes cached statements and the connection pool.
func (p *Postgres) Close(context.Context) error {
	p.stmtCache.Lock()
	for _, stmt := range p.stmtCache.statements {
		stmt.Close()
	}
	p.stmtCache.statements = make(map[string]*sqlx.Stmt)
	p.stmtCache.Unlock()

	return p.conn.Close()
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
