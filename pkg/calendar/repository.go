package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// WithTransaction runs fn against a repository bound to one transaction. It is also the
	// way to read a consistent snapshot across several queries.
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	LoadCalendars(ctx context.Context) (Calendars, error)
	LoadCalendar(ctx context.Context, id string) (Calendar, error)
	UpsertCalendars(ctx context.Context, calendars []Calendar) error
	LoadEvents(ctx context.Context, query EventQuery) ([]Event, error)
	UpsertEvents(ctx context.Context, events []Event) error
}

type RepositoryImpl struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db, tx: nil}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		// Already inside a transaction; nest by reusing it.
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrTransaction, err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepositoryImpl{db: r.db, tx: tx}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrTransaction, err)
	}

	return nil
}

func (r *RepositoryImpl) LoadCalendars(ctx context.Context) (Calendars, error) {
	query := `SELECT id, name, description, time_zone, active FROM calendars`

	rows, err := r.getQueryer().QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query calendars: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	calendars := make(Calendars)
	for rows.Next() {
		var id string
		var name, description, timeZone sql.NullString
		var active sql.NullInt64
		if err := rows.Scan(&id, &name, &description, &timeZone, &active); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}

		tz, err := decodeTimeZone(timeZone)
		if err != nil {
			err := &DecodeError{Table: "calendars", ID: id, Column: "time_zone", Value: timeZone.String, Err: err}
			log.Error(err)
			return nil, err
		}

		calendars[id] = Calendar{
			ID:          id,
			Name:        name.String,
			Description: description.String,
			TimeZone:    tz,
			Active:      decodeBool(active),
		}
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("could not iterate calendars: %w", err)
		log.Error(err)
		return nil, err
	}
	return calendars, nil
}

func (r *RepositoryImpl) LoadCalendar(ctx context.Context, id string) (Calendar, error) {
	query := `SELECT name, description, time_zone, active FROM calendars WHERE id = ?`

	var name, description, timeZone sql.NullString
	var active sql.NullInt64
	err := r.getQueryer().QueryRowContext(ctx, query, id).Scan(&name, &description, &timeZone, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return Calendar{}, fmt.Errorf("%w: %s", ErrCalendarNotFound, id)
	}
	if err != nil {
		err := fmt.Errorf("could not query calendar %s: %w", id, err)
		log.Error(err)
		return Calendar{}, err
	}

	tz, err := decodeTimeZone(timeZone)
	if err != nil {
		err := &DecodeError{Table: "calendars", ID: id, Column: "time_zone", Value: timeZone.String, Err: err}
		log.Error(err)
		return Calendar{}, err
	}
	return Calendar{
		ID:          id,
		Name:        name.String,
		Description: description.String,
		TimeZone:    tz,
		Active:      decodeBool(active),
	}, nil
}

// UpsertCalendars replaces every calendar by id, all or nothing. Invalid calendars abort the whole batch.
func (r *RepositoryImpl) UpsertCalendars(ctx context.Context, calendars []Calendar) error {
	if len(calendars) == 0 {
		return nil
	}
	for _, c := range calendars {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return r.WithTransaction(ctx, func(repo Repository) error {
		txRepo := repo.(*RepositoryImpl)
		query := `INSERT OR REPLACE INTO calendars (id, name, description, time_zone, active) VALUES (?, ?, ?, ?, ?)`

		stmt, err := txRepo.getQueryer().PrepareContext(ctx, query)
		if err != nil {
			err := fmt.Errorf("%w: could not prepare query: %w", ErrTransaction, err)
			log.Error(err)
			return err
		}
		defer stmt.Close()

		for _, c := range calendars {
			tz := c.TimeZone
			if tz == "" {
				tz = DefaultTimeZone
			}
			_, err := stmt.ExecContext(ctx, c.ID, c.Name, encodeOptional(c.Description), tz, encodeBool(c.Active))
			if err != nil {
				err := fmt.Errorf("%w: could not upsert calendar %s: %w", ErrTransaction, c.ID, err)
				log.Error(err)
				return err
			}
		}
		log.Debugf("Upserted %d calendars", len(calendars))
		return nil
	})
}

// LoadEvents is the primitive scan behind Find. SQL narrows the rows; the window edges,
// final order and limit are settled on the decoded events.
func (r *RepositoryImpl) LoadEvents(ctx context.Context, q EventQuery) ([]Event, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	query, args := q.toSQL()
	log.Tracef("Loading events: %s %v", query, args)

	rows, err := r.getQueryer().QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		var id string
		var calendarId, start, end, name, description sql.NullString
		if err := rows.Scan(&id, &calendarId, &start, &end, &name, &description); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}

		span, err := decodeSpan(start.String, end.String)
		if err != nil {
			err := &DecodeError{Table: "events", ID: id, Column: "start/end", Value: start.String + "/" + end.String, Err: err}
			log.Error(err)
			return nil, err
		}

		events = append(events, Event{
			ID:          id,
			CalendarID:  calendarId.String,
			Span:        span,
			Name:        name.String,
			Description: description.String,
		})
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("could not iterate events: %w", err)
		log.Error(err)
		return nil, err
	}
	return q.finish(events), nil
}

// UpsertEvents replaces every event by id, all or nothing. Invalid events abort the whole batch.
func (r *RepositoryImpl) UpsertEvents(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return r.WithTransaction(ctx, func(repo Repository) error {
		txRepo := repo.(*RepositoryImpl)
		query := `INSERT OR REPLACE INTO events (id, calendar_id, start, "end", name, description) VALUES (?, ?, ?, ?, ?, ?)`

		stmt, err := txRepo.getQueryer().PrepareContext(ctx, query)
		if err != nil {
			err := fmt.Errorf("%w: could not prepare query: %w", ErrTransaction, err)
			log.Error(err)
			return err
		}
		defer stmt.Close()

		for _, e := range events {
			_, err := stmt.ExecContext(ctx, e.ID, e.CalendarID, encodeMoment(e.Start()), encodeMoment(e.End()),
				e.Name, encodeOptional(e.Description))
			if err != nil {
				err := fmt.Errorf("%w: could not upsert event %s: %w", ErrTransaction, e.ID, err)
				log.Error(err)
				return err
			}
		}
		log.Debugf("Upserted %d events", len(events))
		return nil
	})
}
