package docstore

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrInvalidCursor is returned for malformed tokens and for cursors used
// against a query they were not produced by.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor marks the position after the last document of a page. Its fields
// are unexported: callers can only receive one from a Result, carry it as a
// token, and hand it back.
type Cursor struct {
	scope string
	sort  time.Time
	id    string
}

type cursorToken struct {
	Scope string `json:"s"`
	Secs  int64  `json:"t"`
	Nanos int    `json:"n,omitempty"`
	ID    string `json:"i"`
}

// Token encodes the cursor for transport.
func (c *Cursor) Token() string {
	if c == nil {
		return ""
	}
	raw, _ := json.Marshal(cursorToken{
		Scope: c.scope,
		Secs:  c.sort.Unix(),
		Nanos: c.sort.Nanosecond(),
		ID:    c.id,
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor reverses Token. An empty token decodes to nil (start of feed).
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var t cursorToken
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if t.Scope == "" || t.ID == "" {
		return nil, fmt.Errorf("%w: incomplete token", ErrInvalidCursor)
	}
	if t.Nanos < 0 || t.Nanos > 999999999 {
		return nil, fmt.Errorf("%w: nanoseconds out of range", ErrInvalidCursor)
	}
	return &Cursor{scope: t.Scope, sort: time.Unix(t.Secs, int64(t.Nanos)).UTC(), id: t.ID}, nil
}

// scope identifies the shape of a query: collection, order and filtered
// fields with their operators. Filter values are left out so a feed bounded
// by "now" can still be resumed later.
func (q Query) scope() string {
	parts := make([]string, 0, len(q.Filters))
	for _, f := range q.Filters {
		parts = append(parts, f.Field+string(f.Op))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s|%s:%s|%s", q.Collection, q.OrderBy.Field, q.OrderBy.Direction, strings.Join(parts, ","))
}

func newCursor(q Query, sortValue time.Time, id string) *Cursor {
	return &Cursor{scope: q.scope(), sort: sortValue.UTC(), id: id}
}

// after reports whether (sortValue, id) lies strictly past the cursor in direction dir.
func (c *Cursor) after(sortValue time.Time, id string, dir Direction) bool {
	cmp := sortValue.Compare(c.sort)
	if cmp == 0 {
		cmp = strings.Compare(id, c.id)
	}
	if dir == Desc {
		return cmp < 0
	}
	return cmp > 0
}
