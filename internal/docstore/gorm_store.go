package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentModel is the row shape of every collection table. Indexed fields
// are lifted into columns; the full document lives in Data.
type DocumentModel struct {
	ID        string          `gorm:"primaryKey;size:64"`
	UserID    string          `gorm:"size:128;not null;index:idx_user_end_date,priority:1;index:idx_user_created_at,priority:1"`
	EndDate   time.Time       `gorm:"not null;index:idx_user_end_date,priority:2"`
	CreatedAt time.Time       `gorm:"not null;index:idx_user_created_at,priority:2"`
	UpdatedAt time.Time       `gorm:"not null"`
	Data      json.RawMessage `gorm:"type:jsonb;not null"`
}

var columns = map[string]string{
	FieldID:        "id",
	FieldUserID:    "user_id",
	FieldEndDate:   "end_date",
	FieldCreatedAt: "created_at",
}

// GormStore runs queries against PostgreSQL tables of DocumentModel rows.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates the table backing collection.
func (s *GormStore) AutoMigrate(collection string) error {
	if err := s.db.Table(collection).AutoMigrate(&DocumentModel{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", collection, err)
	}
	return nil
}

// Upsert writes docs into collection, replacing rows with the same id.
func (s *GormStore) Upsert(ctx context.Context, collection string, docs ...Document) error {
	if len(docs) == 0 {
		return nil
	}
	models := make([]*DocumentModel, 0, len(docs))
	for _, doc := range docs {
		m, err := NewDocumentModel(doc)
		if err != nil {
			return err
		}
		models = append(models, m)
	}
	err := s.db.WithContext(ctx).Table(collection).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "end_date", "created_at", "updated_at", "data"}),
	}).Create(&models).Error
	if err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", collection, err)
	}
	return nil
}

// Query implements Store using keyset pagination on (sort column, id).
func (s *GormStore) Query(ctx context.Context, q Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Table(q.Collection)
	for _, f := range q.Filters {
		tx = tx.Where(fmt.Sprintf("%s %s ?", columns[f.Field], f.Op.sql()), f.Value)
	}

	if q.OrderBy.Field != "" {
		col := columns[q.OrderBy.Field]
		dir := strings.ToUpper(string(q.OrderBy.Direction))
		if q.After != nil {
			cmp := ">"
			if q.OrderBy.Direction == Desc {
				cmp = "<"
			}
			tx = tx.Where(
				fmt.Sprintf("((%s %s ?) OR (%s = ? AND id %s ?))", col, cmp, col, cmp),
				q.After.sort, q.After.sort, q.After.id,
			)
		}
		tx = tx.Order(fmt.Sprintf("%s %s, id %s", col, dir, dir))
	}

	if q.Limit > 0 {
		tx = tx.Limit(q.Limit + 1)
	}

	var models []DocumentModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.Collection, err)
	}

	result := &Result{}
	if q.Limit > 0 && len(models) > q.Limit {
		models = models[:q.Limit]
		result.HasMore = true
	}

	result.Documents = make([]Document, 0, len(models))
	for i := range models {
		doc, err := toDocument(&models[i])
		if err != nil {
			return nil, err
		}
		result.Documents = append(result.Documents, doc)
	}

	if n := len(models); n > 0 && q.OrderBy.Field != "" {
		last := &models[n-1]
		sortValue := last.EndDate
		if q.OrderBy.Field == FieldCreatedAt {
			sortValue = last.CreatedAt
		}
		result.Last = newCursor(q, sortValue, last.ID)
	}
	return result, nil
}

// toDocument decodes the jsonb payload. Indexed columns are authoritative and
// fill in their fields when the payload omits them.
func toDocument(m *DocumentModel) (Document, error) {
	fields := Fields{}
	if len(m.Data) > 0 {
		if err := json.Unmarshal(m.Data, &fields); err != nil {
			return Document{}, fmt.Errorf("failed to decode document %s: %w", m.ID, err)
		}
	}
	if _, ok := fields[FieldUserID]; !ok {
		fields[FieldUserID] = m.UserID
	}
	if _, ok := fields[FieldEndDate]; !ok {
		fields[FieldEndDate] = m.EndDate
	}
	if _, ok := fields[FieldCreatedAt]; !ok {
		fields[FieldCreatedAt] = m.CreatedAt
	}
	return Document{ID: m.ID, Fields: fields}, nil
}

// NewDocumentModel builds a row from a document, lifting the indexed fields
// into columns.
func NewDocumentModel(doc Document) (*DocumentModel, error) {
	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
	}
	userID, _ := doc.Fields.String(FieldUserID)
	createdAt := doc.Fields.Time(FieldCreatedAt)
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &DocumentModel{
		ID:        doc.ID,
		UserID:    userID,
		EndDate:   doc.Fields.Time(FieldEndDate),
		CreatedAt: createdAt,
		UpdatedAt: time.Now().UTC(),
		Data:      data,
	}, nil
}
