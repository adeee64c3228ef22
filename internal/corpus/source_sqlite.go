package corpus

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gcbaptista/jobmatch/model"
)

// jobRow is the relational shape of a posting.
type jobRow struct {
	ID             string `gorm:"primaryKey"`
	Name           string `gorm:"not null"`
	Position       string
	Description    string
	Requirements   string
	Location       string
	SalaryMin      *float64
	SalaryMax      *float64
	SalaryCurrency string
	UpdatedAt      time.Time
}

func rowFromDocument(doc model.Document) jobRow {
	row := jobRow{
		ID:           doc.ID,
		Name:         doc.Name,
		Position:     doc.Position,
		Description:  doc.Description,
		Requirements: doc.Requirements,
		Location:     doc.Location,
	}
	if doc.Salary != nil {
		minSalary, maxSalary := doc.Salary.Min, doc.Salary.Max
		row.SalaryMin = &minSalary
		row.SalaryMax = &maxSalary
		row.SalaryCurrency = doc.Salary.Currency
	}
	return row
}

func (row jobRow) document() model.Document {
	doc := model.Document{
		ID:           row.ID,
		Name:         row.Name,
		Position:     row.Position,
		Description:  row.Description,
		Requirements: row.Requirements,
		Location:     row.Location,
	}
	doc.Salary = salaryRange(row.SalaryMin, row.SalaryMax, row.SalaryCurrency)
	return doc
}

func salaryRange(minSalary, maxSalary *float64, currency string) *model.SalaryRange {
	if minSalary == nil && maxSalary == nil {
		return nil
	}
	salary := &model.SalaryRange{Currency: currency}
	if minSalary != nil {
		salary.Min = *minSalary
	}
	if maxSalary != nil {
		salary.Max = *maxSalary
	}
	return salary
}

// SQLiteSource stores postings in a SQLite table through gorm. The driver is pure Go.
type SQLiteSource struct {
	db    *gorm.DB
	table string
}

// NewSQLiteSource opens (or creates) the database at path and migrates the table.
func NewSQLiteSource(path, table string) (*SQLiteSource, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	if err := db.Table(table).AutoMigrate(&jobRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate table %s: %w", table, err)
	}
	return &SQLiteSource{db: db, table: table}, nil
}

func (s *SQLiteSource) FetchAll(ctx context.Context) ([]model.Document, error) {
	var rows []jobRow
	if err := s.db.WithContext(ctx).Table(s.table).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	docs := make([]model.Document, len(rows))
	for i, row := range rows {
		docs[i] = row.document()
	}
	return docs, nil
}

// Upsert inserts docs, replacing rows with the same id.
func (s *SQLiteSource) Upsert(ctx context.Context, docs []model.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	rows := make([]jobRow, len(docs))
	for i, doc := range docs {
		rows[i] = rowFromDocument(doc)
	}
	result := s.db.WithContext(ctx).Table(s.table).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to upsert into %s: %w", s.table, result.Error)
	}
	return len(docs), nil
}

func (s *SQLiteSource) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
