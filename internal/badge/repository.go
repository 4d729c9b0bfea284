package badge

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Schema is the badge table. A badge belongs to a referee when referee_id is
// set; program then holds the referee template name instead of the relay name.
const Schema = `CREATE TABLE IF NOT EXISTS badge (
	id                 SERIAL PRIMARY KEY,
	color_code         BIGINT NOT NULL DEFAULT 0,
	attained_level     INTEGER NOT NULL,
	level_count        INTEGER NOT NULL,
	course_code        VARCHAR(20) NOT NULL,
	course_name        VARCHAR(255) NOT NULL,
	program            VARCHAR(255) NOT NULL,
	holder_name        VARCHAR(255) NOT NULL,
	holder_email       VARCHAR(255) NOT NULL,
	referee_id         INTEGER DEFAULT NULL,
	rendering_count    INTEGER NOT NULL DEFAULT 0,
	time_last_rendered TIMESTAMP DEFAULT NULL,
	verification_count INTEGER NOT NULL DEFAULT 0,
	time_last_verified TIMESTAMP DEFAULT NULL
)`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// CreateTable creates the badge table when it does not exist yet.
func (r *Repository) CreateTable() error {
	_, err := r.db.Exec(Schema)
	return err
}

func (r *Repository) GetBadge(id int) (Record, error) {
	rec := Record{}
	var program, name, email string
	var refereeID sql.NullInt64
	row := r.db.QueryRow(
		`SELECT id, color_code, attained_level, level_count, course_code, course_name,
			program, holder_name, holder_email, referee_id,
			rendering_count, time_last_rendered, verification_count, time_last_verified
		FROM badge WHERE id = $1`, id)
	err := row.Scan(
		&rec.ID,
		&rec.ColorCode,
		&rec.Level,
		&rec.Levels,
		&rec.CourseCode,
		&rec.CourseName,
		&program,
		&name,
		&email,
		&refereeID,
		&rec.RenderCount,
		&rec.LastRenderedAt,
		&rec.VerifyCount,
		&rec.LastVerifiedAt,
	)
	if err == sql.ErrNoRows {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, err
	}
	if refereeID.Valid {
		rec.Owner = Referee{ID: int(refereeID.Int64), Name: name, Email: email, Template: program}
	} else {
		rec.Owner = Participant{Name: name, Email: email, Relay: program}
	}
	return rec, nil
}

// SaveBadge inserts rec and returns its new ID.
func (r *Repository) SaveBadge(rec Record) (int, error) {
	p := rec.Payload()
	var refereeID sql.NullInt64
	if ref, ok := rec.Owner.(Referee); ok {
		refereeID = sql.NullInt64{Int64: int64(ref.ID), Valid: true}
	}
	var id int
	err := r.db.QueryRow(
		`INSERT INTO badge (color_code, attained_level, level_count, course_code, course_name, program, holder_name, holder_email, referee_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		rec.ColorCode,
		rec.Level,
		rec.Levels,
		rec.CourseCode,
		rec.CourseName,
		p.Program,
		p.Name,
		p.Email,
		refereeID,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert badge")
	}
	return id, nil
}

// UpdateLevel sets the attained level, e.g. after a relay step is completed.
// Images certified earlier stop verifying.
func (r *Repository) UpdateLevel(id, level int) error {
	return r.exec(`UPDATE badge SET attained_level = $2 WHERE id = $1`, id, level)
}

func (r *Repository) MarkRendered(id int, at time.Time) error {
	return r.exec(`UPDATE badge SET rendering_count = rendering_count + 1, time_last_rendered = $2 WHERE id = $1`, id, at)
}

func (r *Repository) MarkVerified(id int, at time.Time) error {
	return r.exec(`UPDATE badge SET verification_count = verification_count + 1, time_last_verified = $2 WHERE id = $1`, id, at)
}

func (r *Repository) exec(stmt string, id int, arg interface{}) error {
	res, err := r.db.Exec(stmt, id, arg)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
