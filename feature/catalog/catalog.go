package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"scene-publisher/core/database"
	"scene-publisher/core/object"
	"scene-publisher/core/object/memstore"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoDatabase is returned when the catalog has no connection.
var ErrNoDatabase = errors.New("catalog database is not configured")

// batchSize bounds the rows of one insert statement.
const batchSize = 200

// Catalog saves and loads the object graph.
type Catalog struct {
	db     *gorm.DB
	index  *Index
	logger *zap.Logger
	now    func() time.Time
}

// New creates a catalog over db. Index snapshots live for ttl.
func New(db *gorm.DB, ttl time.Duration, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{db: db, index: NewIndex(db, ttl), logger: logger, now: time.Now}
}

// Index returns the asset index backed by the saved rows.
func (c *Catalog) Index() *Index {
	return c.index
}

// Migrate creates or updates the table and verifies its columns.
func (c *Catalog) Migrate(ctx context.Context) error {
	if c.db == nil {
		return ErrNoDatabase
	}
	if err := c.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("migrate %s: %w", TableName, err)
	}
	return c.CheckSchema()
}

// CheckSchema reports columns the table lacks.
func (c *Catalog) CheckSchema() error {
	if c.db == nil {
		return ErrNoDatabase
	}
	missing, err := database.MissingColumns(c.db, TableName, Columns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns: %s", TableName, strings.Join(missing, ", "))
	}
	return nil
}

// Load reads every row into a fresh store.
func (c *Catalog) Load(ctx context.Context) (*memstore.Store, error) {
	if c.db == nil {
		return nil, ErrNoDatabase
	}
	var rows []Record
	if err := c.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %s: %w", TableName, err)
	}

	objs := make([]object.Object, 0, len(rows))
	for _, r := range rows {
		o, err := r.Object()
		if err != nil {
			return nil, err
		}
		objs = append(objs, o)
	}
	s := memstore.New()
	if err := s.Load(objs); err != nil {
		return nil, err
	}
	c.logger.Info("catalog loaded", zap.Int("objects", len(objs)))
	return s, nil
}

// Save replaces the saved rows with the content of s in one transaction and
// returns the number of rows written.
func (c *Catalog) Save(ctx context.Context, s *memstore.Store) (int, error) {
	if c.db == nil {
		return 0, ErrNoDatabase
	}
	now := c.now()
	objs := s.Export()
	rows := make([]Record, 0, len(objs))
	for i := range objs {
		r, err := FromObject(&objs[i], now)
		if err != nil {
			return 0, err
		}
		rows = append(rows, r)
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Record{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, batchSize).Error
	})
	if err != nil {
		return 0, fmt.Errorf("save %s: %w", TableName, err)
	}
	c.index.Invalidate()
	c.logger.Info("catalog saved", zap.Int("objects", len(rows)))
	return len(rows), nil
}
