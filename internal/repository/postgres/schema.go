package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"blueelephant/internal/domain"
)

// column pairs a client attribute name with its snake_case column.
type column struct {
	attr string
	name string
}

// table is the bidirectional attribute/column mapping for one entity.
// Column order is also the SELECT and Scan order used by the repository.
type table struct {
	name    string
	columns []column
}

var eventsTable = table{
	name: "events",
	columns: []column{
		{"id", "id"},
		{"title", "title"},
		{"date", "date"},
		{"time", "time"},
		{"location", "location"},
		{"description", "description"},
		{"type", "type"},
		{"capacity", "capacity"},
		{"registered", "registered"},
		{"image", "image"},
		{"initialLikes", "initial_likes"},
		{"createdAt", "created_at"},
	},
}

var testimonialsTable = table{
	name: "testimonials",
	columns: []column{
		{"id", "id"},
		{"author", "author"},
		{"authorEmail", "author_email"},
		{"role", "role"},
		{"title", "title"},
		{"content", "content"},
		{"date", "date"},
		{"avatar", "avatar"},
		{"status", "status"},
		{"rank", "rank"},
		{"createdAt", "created_at"},
	},
}

var volunteerApplicationsTable = table{
	name: "volunteer_applications",
	columns: []column{
		{"id", "id"},
		{"name", "name"},
		{"email", "email"},
		{"interest", "interest"},
		{"status", "status"},
		{"createdAt", "created_at"},
	},
}

var eventRegistrationsTable = table{
	name: "event_registrations",
	columns: []column{
		{"id", "id"},
		{"eventId", "event_id"},
		{"userId", "user_id"},
		{"userName", "user_name"},
		{"userEmail", "user_email"},
		{"status", "status"},
		{"date", "date"},
		{"createdAt", "created_at"},
	},
}

// Column returns the column for a client attribute.
func (t table) Column(attr string) (string, bool) {
	for _, c := range t.columns {
		if c.attr == attr {
			return c.name, true
		}
	}
	return "", false
}

// Attr returns the client attribute for a column.
func (t table) Attr(name string) (string, bool) {
	for _, c := range t.columns {
		if c.name == name {
			return c.attr, true
		}
	}
	return "", false
}

// selectList returns every column, in mapping order, joined for a SELECT or RETURNING clause.
func (t table) selectList() string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return strings.Join(names, ", ")
}

// updateQuery builds "UPDATE <table> SET a = $1, b = $2 WHERE id = $n" from
// attribute-keyed fields. The id is the last argument.
func (t table) updateQuery(id string, fields []domain.Field) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("%w: empty update", domain.ErrInvalidInput)
	}
	setClauses := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for i, f := range fields {
		name, ok := t.Column(f.Attr)
		if !ok || name == "id" || name == "created_at" {
			return "", nil, fmt.Errorf("%w: unknown %s attribute %q", domain.ErrInvalidInput, t.name, f.Attr)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", name, i+1))
		args = append(args, sqlValue(f.Value))
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`, t.name, strings.Join(setClauses, ", "), len(args))
	return query, args, nil
}

// sqlValue converts domain string types to plain strings for the driver.
func sqlValue(v any) any {
	switch x := v.(type) {
	case domain.Status:
		return string(x)
	case domain.EventType:
		return string(x)
	}
	return v
}

// translateError converts a driver rejection into a domain.BackendError so
// callers can report message and detail without importing lib/pq.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &domain.BackendError{
			Code:    string(pqErr.Code),
			Message: pqErr.Message,
			Detail:  pqErr.Detail,
		}
	}
	return err
}
