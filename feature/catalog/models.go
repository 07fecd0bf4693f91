package catalog

import (
	"fmt"
	"time"

	"scene-publisher/core/object"

	"github.com/goccy/go-json"
)

// TableName is the table holding object rows.
const TableName = "scene_objects"

// Record is the row of one object.
type Record struct {
	ID         string    `gorm:"column:id;primaryKey;size:64"`
	Kind       string    `gorm:"column:kind;size:64;index:idx_scene_objects_lookup,priority:2"`
	Dir        string    `gorm:"column:dir;size:512;index:idx_scene_objects_lookup,priority:1"`
	Name       string    `gorm:"column:name;size:255"`
	Outer      string    `gorm:"column:outer_id;size:64"`
	StableID   string    `gorm:"column:stable_id;size:128;index:idx_scene_objects_lookup,priority:3"`
	SourceFile string    `gorm:"column:source_file;size:1024"`
	Hash       string    `gorm:"column:hash;size:64"`
	Data       []byte    `gorm:"column:data"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (Record) TableName() string {
	return TableName
}

// Columns lists the columns a usable table must have.
var Columns = []string{"id", "kind", "dir", "name", "outer_id", "stable_id", "source_file", "hash", "data", "updated_at"}

// Path returns the path of the object the row describes.
func (r Record) Path() object.Path {
	if r.Dir == "" {
		return object.Path(r.Name)
	}
	return object.Path(r.Dir).Join(r.Name)
}

// FromObject encodes o into a row.
func FromObject(o *object.Object, now time.Time) (Record, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", o.ID, err)
	}
	return Record{
		ID:         string(o.ID),
		Kind:       string(o.Kind),
		Dir:        string(o.Dir),
		Name:       o.Name,
		Outer:      string(o.Outer),
		StableID:   o.StableID,
		SourceFile: o.Import.SourceFile,
		Hash:       o.Import.Hash,
		Data:       data,
		UpdatedAt:  now,
	}, nil
}

// Object decodes the row.
func (r Record) Object() (object.Object, error) {
	var o object.Object
	if err := json.Unmarshal(r.Data, &o); err != nil {
		return object.Object{}, fmt.Errorf("decode %s: %w", r.ID, err)
	}
	if string(o.ID) != r.ID {
		return object.Object{}, fmt.Errorf("decode %s: row holds object %s", r.ID, o.ID)
	}
	return o, nil
}
