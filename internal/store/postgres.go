package store

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seoulmaps/placemeta/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewWithPool wraps an existing pool. Used by tests.
func NewWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS place (
	id             BIGSERIAL PRIMARY KEY,
	name           TEXT,
	address        TEXT NOT NULL,
	business_hours TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS place_hours (
	id         BIGSERIAL PRIMARY KEY,
	place_id   BIGINT NOT NULL REFERENCES place(id) ON DELETE CASCADE,
	day        TEXT NOT NULL,
	time       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS review (
	id                BIGSERIAL PRIMARY KEY,
	place_id          BIGINT NOT NULL REFERENCES place(id) ON DELETE CASCADE,
	author            TEXT NOT NULL,
	review_date       TEXT,
	visit_count       TEXT,
	profile_review    INTEGER,
	profile_photo     INTEGER,
	profile_follower  INTEGER,
	follow            BOOLEAN,
	visit_info        TEXT,
	body              TEXT,
	tags              TEXT[],
	review_more       BOOLEAN,
	extra_review_line TEXT,
	receipt           TEXT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS blog (
	id         BIGSERIAL PRIMARY KEY,
	place_id   BIGINT NOT NULL REFERENCES place(id) ON DELETE CASCADE,
	title      TEXT NOT NULL,
	author     TEXT,
	date       TIMESTAMPTZ,
	content    TEXT,
	blog_url   TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS blog_image (
	id         BIGSERIAL PRIMARY KEY,
	blog_id    BIGINT NOT NULL REFERENCES blog(id) ON DELETE CASCADE,
	image_url  TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS place_photo (
	id         BIGSERIAL PRIMARY KEY,
	place_id   BIGINT NOT NULL REFERENCES place(id) ON DELETE CASCADE,
	image_url  TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_place_hours_place_id ON place_hours(place_id);
CREATE INDEX IF NOT EXISTS idx_review_place_id ON review(place_id);
CREATE INDEX IF NOT EXISTS idx_blog_place_id ON blog(place_id);
CREATE INDEX IF NOT EXISTS idx_blog_image_blog_id ON blog_image(blog_id);
CREATE INDEX IF NOT EXISTS idx_place_photo_place_id ON place_photo(place_id);
`

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return eris.Wrap(err, "postgres: ensure schema")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SavePlaceGraph writes the place and all its children in one transaction,
// parent rows first so generated identities are available for foreign
// keys. Any failure, including a malformed blog date, rolls back the
// whole graph.
func (s *PostgresStore) SavePlaceGraph(ctx context.Context, g *model.Graph) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin save")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var placeID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO place (name, address, business_hours) VALUES ($1, $2, $3) RETURNING id`,
		g.Place.Name, g.Place.Address, g.Place.BusinessHours,
	).Scan(&placeID)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert place")
	}

	for _, h := range g.Place.Hours {
		if _, err := tx.Exec(ctx,
			`INSERT INTO place_hours (place_id, day, time) VALUES ($1, $2, $3)`,
			placeID, h.Day, h.Time,
		); err != nil {
			return 0, eris.Wrap(err, "postgres: insert place hours")
		}
	}

	for _, r := range g.Reviews {
		if _, err := tx.Exec(ctx,
			`INSERT INTO review
				(place_id, author, review_date, visit_count, profile_review, profile_photo,
				 profile_follower, follow, visit_info, body, tags, review_more,
				 extra_review_line, receipt)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			placeID, r.Author, r.VisitDate, r.VisitCount, r.Profile.Review, r.Profile.Photo,
			r.Profile.Follower, r.Follow, r.VisitInfo, r.Body, r.Tags, r.ReviewMore,
			r.ExtraReviewLine, r.Receipt,
		); err != nil {
			return 0, eris.Wrapf(err, "postgres: insert review by %s", r.Author)
		}
	}

	if g.Blog != nil {
		published, err := time.Parse(model.BlogDateLayout, strings.TrimSpace(g.Blog.DateText))
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: parse blog date %q", g.Blog.DateText)
		}

		var blogID int64
		err = tx.QueryRow(ctx,
			`INSERT INTO blog (place_id, title, author, date, content, blog_url)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			placeID, g.Blog.Title, g.Blog.Author, published, g.Blog.Content, g.Blog.URL,
		).Scan(&blogID)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: insert blog")
		}

		for _, imageURL := range g.Blog.Images {
			if _, err := tx.Exec(ctx,
				`INSERT INTO blog_image (blog_id, image_url) VALUES ($1, $2)`,
				blogID, imageURL,
			); err != nil {
				return 0, eris.Wrap(err, "postgres: insert blog image")
			}
		}
	}

	for _, p := range g.Photos {
		if _, err := tx.Exec(ctx,
			`INSERT INTO place_photo (place_id, image_url) VALUES ($1, $2)`,
			placeID, p.URL,
		); err != nil {
			return 0, eris.Wrap(err, "postgres: insert place photo")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit save")
	}

	zap.L().Info("postgres: saved place graph",
		zap.Int64("place_id", placeID),
		zap.Int("hours", len(g.Place.Hours)),
		zap.Int("reviews", len(g.Reviews)),
		zap.Bool("blog", g.Blog != nil),
		zap.Int("photos", len(g.Photos)),
	)
	return placeID, nil
}

func (s *PostgresStore) GetPlace(ctx context.Context, id int64) (*model.PlaceRecord, error) {
	var p model.PlaceRecord
	err := s.pool.QueryRow(ctx,
		`SELECT id, COALESCE(name, ''), address, COALESCE(business_hours, ''), created_at
		 FROM place WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Address, &p.BusinessHours, &p.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get place %d", id)
	}
	return &p, nil
}

func (s *PostgresStore) ListPlaces(ctx context.Context, limit int) ([]model.PlaceRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(name, ''), address, COALESCE(business_hours, ''), created_at
		 FROM place ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list places")
	}
	defer rows.Close()

	var places []model.PlaceRecord
	for rows.Next() {
		var p model.PlaceRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.BusinessHours, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan place")
		}
		places = append(places, p)
	}
	return places, eris.Wrap(rows.Err(), "postgres: list places iterate")
}
