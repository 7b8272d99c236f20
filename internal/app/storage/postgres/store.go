package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/R3E-Network/fatesheet/internal/app/domain/character"
	"github.com/R3E-Network/fatesheet/internal/app/storage"
	"github.com/R3E-Network/fatesheet/internal/logging"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db  *sqlx.DB
	log *logging.Logger
}

var _ storage.TodoStore = (*Store)(nil)
var _ storage.CharacterStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB, log *logging.Logger) *Store {
	if log == nil {
		log = logging.NewDefault("postgres")
	}
	return &Store{db: sqlx.NewDb(db, "postgres"), log: log}
}

// Open connects to dsn with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// --- TodoStore --------------------------------------------------------------

func (s *Store) Append(ctx context.Context, item string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO todos (todo)
		VALUES ($1)
		RETURNING id
	`, item).Scan(&id)
	if err != nil {
		s.log.LogDBError(ctx, "append todo", err)
		return uuid.Nil, fmt.Errorf("append todo: %w", err)
	}
	return id, nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	todos := []string{}
	err := s.retryRead(ctx, "list todos", func() error {
		todos = todos[:0]
		return s.db.SelectContext(ctx, &todos, `
			SELECT todo
			FROM todos
			ORDER BY created_at, id
		`)
	})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// --- CharacterStore ---------------------------------------------------------

const characterQuery = `
	SELECT json_build_object(
		'name', c.name,
		'stunts', COALESCE(to_json(c.stunts), '[]'::json),
		'skills', COALESCE((
			SELECT json_agg(json_build_object(
				'name', json_build_object('name', s.name),
				'level', cs.level
			) ORDER BY s.name)
			FROM fate_character_skills cs
			JOIN fate_skills s ON s.id = cs.skill_id
			WHERE cs.character_id = c.id
		), '[]'::json),
		'aspects', COALESCE((
			SELECT json_agg(json_build_object(
				'description', a.description,
				'aspect_type', a.aspect_type
			) ORDER BY a.position)
			FROM fate_aspects a
			WHERE a.character_id = c.id
		), '[]'::json)
	)::text
	FROM fate_characters c
	WHERE c.id = $1::uuid
`

func (s *Store) GetCharacter(ctx context.Context, id string) (character.Record, error) {
	var doc string
	err := s.retryRead(ctx, "get character", func() error {
		return s.db.GetContext(ctx, &doc, characterQuery, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return character.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return character.Record{}, fmt.Errorf("get character %s: %w", id, err)
	}

	rec, err := character.ParseRecord([]byte(doc))
	if err != nil {
		s.log.WithContext(ctx).WithError(err).WithField("character_id", id).Error("stored character is malformed")
		return character.Record{}, fmt.Errorf("get character %s: %w", id, err)
	}
	return rec, nil
}

func (s *Store) ListAllowedSkills(ctx context.Context) ([]string, error) {
	names := []string{}
	err := s.retryRead(ctx, "list allowed skills", func() error {
		names = names[:0]
		return s.db.SelectContext(ctx, &names, `
			SELECT name
			FROM fate_skills
			ORDER BY name
		`)
	})
	if err != nil {
		return nil, fmt.Errorf("list allowed skills: %w", err)
	}
	return names, nil
}

// UpdateCharacter replaces the character's name, stunts, aspects and skills in
// a single transaction. Skills are linked by name; names absent from
// fate_skills are rejected.
func (s *Store) UpdateCharacter(ctx context.Context, id string, rec character.Record) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.log.LogDBError(ctx, "begin update character", err)
		return fmt.Errorf("update character %s: %w", id, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE fate_characters
		SET name = $2, stunts = $3
		WHERE id = $1::uuid
	`, id, rec.Name, pq.Array(rec.Stunts))
	if err != nil {
		s.log.LogDBError(ctx, "update character", err)
		return fmt.Errorf("update character %s: %w", id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM fate_aspects WHERE character_id = $1::uuid`, id); err != nil {
		s.log.LogDBError(ctx, "clear aspects", err)
		return fmt.Errorf("update character %s aspects: %w", id, err)
	}
	for i, a := range rec.Aspects {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO fate_aspects (character_id, position, description, aspect_type)
			VALUES ($1::uuid, $2, $3, $4)
		`, id, i, a.Description, string(a.Type)); err != nil {
			s.log.LogDBError(ctx, "insert aspect", err)
			return fmt.Errorf("update character %s aspects: %w", id, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM fate_character_skills WHERE character_id = $1::uuid`, id); err != nil {
		s.log.LogDBError(ctx, "clear skills", err)
		return fmt.Errorf("update character %s skills: %w", id, err)
	}
	for _, sk := range rec.Skills {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			INSERT INTO fate_character_skills (character_id, skill_id, level)
			SELECT $1::uuid, s.id, $3
			FROM fate_skills s
			WHERE s.name = $2
		`, id, sk.Name.Name, sk.Level)
		if err != nil {
			s.log.LogDBError(ctx, "insert skill", err)
			return fmt.Errorf("update character %s skills: %w", id, err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			err = fmt.Errorf("update character %s: unknown skill %q", id, sk.Name.Name)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		s.log.LogDBError(ctx, "commit update character", err)
		return fmt.Errorf("update character %s: %w", id, err)
	}
	return nil
}
