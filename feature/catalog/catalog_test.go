package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"scene-publisher/core/database"
	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/object/memstore"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const textures object.Path = "/Game/Room/Textures"

func setupCatalog(t *testing.T, ttl time.Duration) *Catalog {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	c := New(db, ttl, zap.NewNop())
	require.NoError(t, c.Migrate(context.Background()))
	return c
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func seedStore(t *testing.T) (*memstore.Store, *object.Object) {
	t.Helper()
	s := memstore.New()
	tex, err := s.Create(&object.Object{
		Kind:     object.KindTexture,
		Name:     "T_Wood",
		Dir:      textures,
		StableID: "t1",
		Props:    object.Props{"SRGB": object.Bool(true), "Width": object.Int(512)},
		Import:   object.ImportData{SourceFile: "room.yaml", Hash: "abc"},
	})
	require.NoError(t, err)
	mat, err := s.Create(&object.Object{
		Kind:     object.KindMaterial,
		Name:     "M_Wood",
		Dir:      "/Game/Room/Materials",
		StableID: "m1",
		Props:    object.Props{"Texture.Diffuse": object.StrongValue(tex.ID)},
	})
	require.NoError(t, err)
	_, err = s.Create(&object.Object{Kind: object.KindSceneComponent, Name: "Root", Outer: mat.ID})
	require.NoError(t, err)
	return s, tex
}

// TestSaveLoad tests a round trip of the object graph through sqlite.
func TestSaveLoad(t *testing.T) {
	c := setupCatalog(t, time.Minute)
	s, tex := seedStore(t)

	n, err := c.Save(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	loaded, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())

	got, ok := loaded.FindByPath(textures.Join("T_Wood"))
	require.True(t, ok)
	assert.Equal(t, tex.ID, got.ID)
	assert.True(t, tex.Props.Equal(got.Props))
	assert.Equal(t, tex.Import, got.Import)

	mat, ok := loaded.FindByPath("/Game/Room/Materials/M_Wood")
	require.True(t, ok)
	assert.Equal(t, object.StrongValue(tex.ID), mat.Props["Texture.Diffuse"])
	assert.Len(t, object.Subobjects(loaded, mat), 1)
}

// TestSave_Replaces tests that a save drops rows of deleted objects.
func TestSave_Replaces(t *testing.T) {
	c := setupCatalog(t, time.Minute)
	s, tex := seedStore(t)
	_, err := c.Save(context.Background(), s)
	require.NoError(t, err)

	require.NoError(t, s.Delete(tex.ID))
	n, err := c.Save(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, err := c.Load(context.Background())
	require.NoError(t, err)
	_, ok := loaded.Get(tex.ID)
	assert.False(t, ok)
}

// TestIndex tests asset lookups and invalidation on save.
func TestIndex(t *testing.T) {
	c := setupCatalog(t, time.Hour)
	s, tex := seedStore(t)
	ctx := context.Background()

	_, ok, err := c.Index().Lookup(ctx, textures, object.KindTexture, "t1")
	require.NoError(t, err)
	assert.False(t, ok, "nothing saved yet")

	_, err = c.Save(ctx, s)
	require.NoError(t, err)

	tests := []struct {
		name     string
		dir      object.Path
		kind     object.Kind
		stableID string
		want     importer.Record
		found    bool
	}{
		{"match", textures, object.KindTexture, "t1", importer.Record{Path: tex.Path(), SourceFile: "room.yaml", Hash: "abc"}, true},
		{"wrong kind", textures, object.KindMaterial, "t1", importer.Record{}, false},
		{"wrong dir", "/Game/Other", object.KindTexture, "t1", importer.Record{}, false},
		{"unknown id", textures, object.KindTexture, "t9", importer.Record{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok, err := c.Index().Lookup(ctx, tt.dir, tt.kind, tt.stableID)
			require.NoError(t, err)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, rec)
		})
	}
}

// TestIndex_Expired tests that a zero TTL reads saved rows on every lookup.
func TestIndex_Expired(t *testing.T) {
	c := setupCatalog(t, 0)
	s, tex := seedStore(t)
	_, err := c.Save(context.Background(), s)
	require.NoError(t, err)

	var ix importer.AssetIndex = c.Index()
	rec, ok, err := ix.Lookup(context.Background(), textures, object.KindTexture, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", rec.Hash)

	// rows written behind the index's back are seen
	require.NoError(t, c.db.Model(&Record{}).Where("id = ?", string(tex.ID)).Update("hash", "def").Error)
	rec, _, err = ix.Lookup(context.Background(), textures, object.KindTexture, "t1")
	require.NoError(t, err)
	assert.Equal(t, "def", rec.Hash)
}

// TestCheckSchema tests detection of an incompatible table.
func TestCheckSchema(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE scene_objects (id TEXT PRIMARY KEY, kind TEXT)").Error)

	err = New(db, 0, nil).CheckSchema()
	assert.ErrorContains(t, err, "missing columns")
	assert.ErrorContains(t, err, "stable_id")
}

// TestNoDatabase tests the errors of a catalog without connection.
func TestNoDatabase(t *testing.T) {
	c := New(nil, 0, nil)
	ctx := context.Background()

	assert.ErrorIs(t, c.Migrate(ctx), ErrNoDatabase)
	_, err := c.Load(ctx)
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = c.Save(ctx, memstore.New())
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, _, err = c.Index().Lookup(ctx, textures, object.KindTexture, "t1")
	assert.ErrorIs(t, err, ErrNoDatabase)
}

// TestSave_RollsBack tests that a failed insert leaves the table untouched.
func TestSave_RollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	c := New(db, time.Minute, nil)
	s, _ := seedStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `scene_objects`").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("INSERT INTO `scene_objects`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := c.Save(context.Background(), s)
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLoad_QueryError tests that query failures are reported.
func TestLoad_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	c := New(db, time.Minute, nil)

	mock.ExpectQuery("SELECT \\* FROM `scene_objects`").WillReturnError(errors.New("connection reset"))

	_, err := c.Load(context.Background())
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLoad_CorruptRow tests that undecodable rows fail the load.
func TestLoad_CorruptRow(t *testing.T) {
	db, mock := setupMockDB(t)
	c := New(db, time.Minute, nil)

	rows := sqlmock.NewRows([]string{"id", "kind", "dir", "name", "outer_id", "stable_id", "source_file", "hash", "data", "updated_at"}).
		AddRow("o1", "Texture", "/Game", "T", "", "t1", "", "", []byte("{not json"), time.Now())
	mock.ExpectQuery("SELECT \\* FROM `scene_objects`").WillReturnRows(rows)

	_, err := c.Load(context.Background())
	assert.ErrorContains(t, err, "decode o1")
}
