package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/liteapi-travel/room-matcher-async/internal/model"
)

// Postgres reads rooms from the "room" table. Array columns use the
// comma-separated simple-array layout.
type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgres(db *sql.DB, logger *zap.Logger) *Postgres {
	return &Postgres{db: db, logger: logger}
}

// Open connects to Postgres through lib/pq and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS room (
	id SERIAL PRIMARY KEY,
	name VARCHAR NOT NULL,
	capacity INTEGER NOT NULL,
	features TEXT NOT NULL,
	"availableSlots" TEXT
)`

// Migrate creates the room table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create room table: %w", err)
	}
	return nil
}

func (p *Postgres) Rooms(ctx context.Context) ([]model.Room, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, capacity, features, "availableSlots" FROM room ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	rooms := []model.Room{}
	for rows.Next() {
		var (
			id       int64
			room     model.Room
			features string
			slots    sql.NullString
		)
		if err := rows.Scan(&id, &room.Name, &room.Capacity, &features, &slots); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		room.ID = strconv.FormatInt(id, 10)
		room.Features = splitArray(features)
		room.AvailableSlots = splitArray(slots.String)
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}

	p.logger.Debug("loaded rooms from postgres", zap.Int("count", len(rooms)))
	return rooms, nil
}

// Seed replaces the table contents with rooms in a single transaction.
// Room IDs are reassigned by the database.
func (p *Postgres) Seed(ctx context.Context, rooms []model.Room) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				p.logger.Warn("seed rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `TRUNCATE TABLE room RESTART IDENTITY`); err != nil {
		return fmt.Errorf("clear rooms: %w", err)
	}
	for _, r := range rooms {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO room (name, capacity, features, "availableSlots") VALUES ($1, $2, $3, $4)`,
			r.Name, r.Capacity, strings.Join(r.Features, ","), strings.Join(r.AvailableSlots, ","),
		); err != nil {
			return fmt.Errorf("insert room %q: %w", r.Name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	p.logger.Info("seeded rooms", zap.Int("count", len(rooms)))
	return nil
}

func splitArray(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
