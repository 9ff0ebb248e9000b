package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/ports"
)

const foreignKeyViolation = "23503"

var articleColumns = []string{
	"id", "url", "category", "title", "translated_title", "body", "translated_body",
	"summary", "topic", "sentiment", "urgency", "published_at", "processed_at", "delivered",
}

// pgxIface is the subset of *pgxpool.Pool the repository needs.
type pgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository persists articles and feedback into Postgres.
type PostgresRepository struct {
	db  pgxIface
	sb  sq.StatementBuilderType
	now func() time.Time
}

var (
	_ ports.ArticleRepository  = (*PostgresRepository)(nil)
	_ ports.FeedbackRepository = (*PostgresRepository)(nil)
)

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %w", domain.ErrStore, err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool: %w", domain.ErrStore, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", domain.ErrStore, err)
	}
	return pool, nil
}

// NewPostgresRepository wires a pgx pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return newRepository(pool)
}

func newRepository(db pgxIface) *PostgresRepository {
	return &PostgresRepository{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now: time.Now,
	}
}

// ExistsByURL reports whether an article with this source URL was stored already.
func (r *PostgresRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	query, args, err := r.sb.Select("1").From("articles").Where(sq.Eq{"url": url}).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: build exists query: %w", domain.ErrStore, err)
	}

	var one int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%w: exists by url: %w", domain.ErrStore, err)
	}
	return true, nil
}

// SaveArticle inserts the article. When the URL is already taken nothing is
// written and the stored row is returned with inserted=false.
func (r *PostgresRepository) SaveArticle(ctx context.Context, a domain.Article) (domain.Article, bool, error) {
	if a.ProcessedAt.IsZero() {
		a.ProcessedAt = r.now().UTC()
	}

	query, args, err := r.sb.Insert("articles").
		Columns(articleColumns[1:13]...).
		Values(a.URL, a.Category, a.Title, a.TranslatedTitle, a.Body, a.TranslatedBody,
			a.Summary, a.Topic, a.Sentiment, a.Urgency, a.PublishedAt, a.ProcessedAt).
		Suffix("ON CONFLICT (url) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("%w: build insert: %w", domain.ErrStore, err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&a.ID)
	switch {
	case err == nil:
		a.Delivered = false
		return a, true, nil
	case errors.Is(err, pgx.ErrNoRows):
		existing, err := r.getArticle(ctx, sq.Eq{"url": a.URL})
		if err != nil {
			return domain.Article{}, false, err
		}
		return existing, false, nil
	default:
		return domain.Article{}, false, fmt.Errorf("%w: insert article: %w", domain.ErrStore, err)
	}
}

// MarkDelivered flips the delivered flag, the only mutable article column.
func (r *PostgresRepository) MarkDelivered(ctx context.Context, id int64) error {
	query, args, err := r.sb.Update("articles").Set("delivered", true).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: build update: %w", domain.ErrStore, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: mark delivered: %w", domain.ErrStore, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: article %d", domain.ErrNotFound, id)
	}
	return nil
}

// GetArticle loads one article by id.
func (r *PostgresRepository) GetArticle(ctx context.Context, id int64) (domain.Article, error) {
	return r.getArticle(ctx, sq.Eq{"id": id})
}

// CountArticles returns the number of stored articles.
func (r *PostgresRepository) CountArticles(ctx context.Context) (int, error) {
	query, args, err := r.sb.Select("COUNT(*)").From("articles").ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: build count: %w", domain.ErrStore, err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count articles: %w", domain.ErrStore, err)
	}
	return int(n), nil
}

// SaveFeedback appends a reaction row. A missing article is reported as
// domain.ErrNotFound.
func (r *PostgresRepository) SaveFeedback(ctx context.Context, fb domain.Feedback) (domain.Feedback, error) {
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = r.now().UTC()
	}

	query, args, err := r.sb.Insert("feedback").
		Columns("article_id", "user_id", "chat_id", "reaction", "created_at").
		Values(fb.ArticleID, fb.UserID, fb.ChatID, string(fb.Reaction), fb.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("%w: build insert: %w", domain.ErrStore, err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&fb.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return domain.Feedback{}, fmt.Errorf("%w: article %d", domain.ErrNotFound, fb.ArticleID)
		}
		return domain.Feedback{}, fmt.Errorf("%w: insert feedback: %w", domain.ErrStore, err)
	}
	return fb, nil
}

// ListHistory returns the user's reactions, oldest first, joined with the article
// title and topic.
func (r *PostgresRepository) ListHistory(ctx context.Context, userID int64) ([]domain.HistoryEntry, error) {
	query, args, err := r.sb.
		Select("f.article_id", "COALESCE(NULLIF(a.translated_title, ''), a.title)", "a.topic", "f.reaction", "f.created_at").
		From("feedback f").
		Join("articles a ON a.id = f.article_id").
		Where(sq.Eq{"f.user_id": userID}).
		OrderBy("f.created_at", "f.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build history query: %w", domain.ErrStore, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query history: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	var history []domain.HistoryEntry
	for rows.Next() {
		var (
			h        domain.HistoryEntry
			reaction string
		)
		if err := rows.Scan(&h.ArticleID, &h.Title, &h.Topic, &reaction, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan history: %w", domain.ErrStore, err)
		}
		h.Reaction = domain.Reaction(reaction)
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: history rows: %w", domain.ErrStore, err)
	}
	return history, nil
}

// ListCandidates returns articles the user has not reacted to, plus the ones kept
// for later. A positive limit keeps the newest ones; the result is in insertion order.
func (r *PostgresRepository) ListCandidates(ctx context.Context, userID int64, limit int) ([]domain.Article, error) {
	newest := r.sb.Select(articleColumns...).
		From("articles a").
		Where(sq.Expr(
			"NOT EXISTS (SELECT 1 FROM feedback f WHERE f.article_id = a.id AND f.user_id = ? AND f.reaction <> ?)",
			userID, string(domain.ReactionReadLater),
		)).
		OrderBy("a.id DESC")
	if limit > 0 {
		newest = newest.Limit(uint64(limit))
	}
	builder := r.sb.Select(articleColumns...).
		FromSelect(newest, "c").
		OrderBy("c.id")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build candidates query: %w", domain.ErrStore, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query candidates: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: candidate rows: %w", domain.ErrStore, err)
	}
	return articles, nil
}

func (r *PostgresRepository) getArticle(ctx context.Context, where sq.Eq) (domain.Article, error) {
	query, args, err := r.sb.Select(articleColumns...).From("articles").Where(where).ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("%w: build select: %w", domain.ErrStore, err)
	}

	a, err := scanArticle(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Article{}, fmt.Errorf("%w: article %v", domain.ErrNotFound, where)
	}
	return a, err
}

func scanArticle(row pgx.Row) (domain.Article, error) {
	var a domain.Article
	err := row.Scan(&a.ID, &a.URL, &a.Category, &a.Title, &a.TranslatedTitle, &a.Body, &a.TranslatedBody,
		&a.Summary, &a.Topic, &a.Sentiment, &a.Urgency, &a.PublishedAt, &a.ProcessedAt, &a.Delivered)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Article{}, err
		}
		return domain.Article{}, fmt.Errorf("%w: scan article: %w", domain.ErrStore, err)
	}
	return a, nil
}
