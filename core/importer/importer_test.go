package importer

import (
	"context"
	"errors"
	"testing"

	"scene-publisher/core/object"
	"scene-publisher/core/object/memstore"
	"scene-publisher/core/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIndex struct {
	mock.Mock
}

func (m *mockIndex) Lookup(ctx context.Context, dir object.Path, kind object.Kind, stableID string) (Record, bool, error) {
	args := m.Called(ctx, dir, kind, stableID)
	return args.Get(0).(Record), args.Bool(1), args.Error(2)
}

func testScene() *scene.Scene {
	return &scene.Scene{
		Name:       "Room",
		SourceFile: "room.yaml",
		Textures: []*scene.Texture{
			{Element: scene.Element{ID: "t1", Name: "T_Wood"}, File: "wood.png"},
			{Element: scene.Element{ID: "t2", Name: "T_Wood"}, File: "wood2.png"},
		},
		Meshes: []*scene.Mesh{
			{Element: scene.Element{ID: "m1", Name: "SM_Table"}, FileHash: "abc"},
		},
		Metadata: []*scene.Metadata{{Target: "SM_Table", Properties: map[string]string{"vendor": "acme"}}},
	}
}

func newContext(t *testing.T, s object.Store, opts Options) *Context {
	t.Helper()
	ic, err := New(testScene(), "/Game/Room", opts, Services{Store: s, Index: StoreIndex{Store: s}})
	require.NoError(t, err)
	return ic
}

// TestNew_Errors tests that setup errors abort before anything is staged.
func TestNew_Errors(t *testing.T) {
	s := memstore.New()
	idx := StoreIndex{Store: s}

	tests := []struct {
		name string
		dest object.Path
		opts Options
		svc  Services
		want error
	}{
		{"missing store", "/Game", Options{}, Services{Index: idx}, ErrMissingService},
		{"missing index", "/Game", Options{}, Services{Store: s}, ErrMissingService},
		{"empty destination", "", Options{}, Services{Store: s, Index: idx}, ErrInvalidDestination},
		{"relative destination", "Game", Options{}, Services{Store: s, Index: idx}, ErrInvalidDestination},
		{"dot segments", "/Game/../Engine", Options{}, Services{Store: s, Index: idx}, ErrInvalidDestination},
		{"transient destination", "/Transient/x", Options{}, Services{Store: s, Index: idx}, ErrInvalidDestination},
		{"current world without world", "/Game", Options{SceneMode: CurrentWorld}, Services{Store: s, Index: idx}, ErrInvalidDestination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic, err := New(testScene(), tt.dest, tt.opts, tt.svc)
			assert.Nil(t, ic)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, s.Len())
		})
	}
}

// TestNew_Namespaces tests the derived staging and final namespaces.
func TestNew_Namespaces(t *testing.T) {
	s := memstore.New()
	ic := newContext(t, s, DefaultOptions())

	assert.Equal(t, TransientRoot.Join(ic.PassID).Join("Textures"), ic.StagingDir(AreaTextures))
	assert.Equal(t, object.Path("/Game/Room/Meshes"), ic.FinalDir(AreaMeshes))
	assert.Equal(t, object.Path("/Game/Room/Room_World"), ic.World)
	assert.Equal(t, ic.World, ic.FinalDir(AreaWorld))
	assert.NotSame(t, ic.Scene, ic.Filtered)
	assert.Equal(t, ic.Scene.Textures[0].File, ic.Filtered.Textures[0].File)

	current, err := New(testScene(), "/Game", Options{SceneMode: CurrentWorld, World: "/Worlds/Main"}, Services{Store: s, Index: StoreIndex{Store: s}})
	require.NoError(t, err)
	assert.Equal(t, object.Path("/Worlds/Main"), current.World)

	assets, err := New(testScene(), "/Game", Options{SceneMode: AssetsOnly}, Services{Store: s, Index: StoreIndex{Store: s}})
	require.NoError(t, err)
	assert.Empty(t, assets.World)
}

// TestStageObject tests tagging and unique naming of staged objects.
func TestStageObject(t *testing.T) {
	s := memstore.New()
	ic := newContext(t, s, DefaultOptions())

	a, err := ic.StageObject(AreaTextures, object.KindTexture, ic.Filtered.Textures[0])
	require.NoError(t, err)
	b, err := ic.StageObject(AreaTextures, object.KindTexture, ic.Filtered.Textures[1])
	require.NoError(t, err)
	m, err := ic.StageObject(AreaMeshes, object.KindStaticMesh, ic.Filtered.Meshes[0])
	require.NoError(t, err)

	assert.Equal(t, "T_Wood", a.Name)
	assert.Equal(t, "T_Wood_1", b.Name)
	assert.Equal(t, "t1", a.StableID)
	assert.Equal(t, "room.yaml", a.Import.SourceFile)
	assert.Equal(t, scene.Hash(ic.Filtered.Textures[0]), a.Import.Hash)
	assert.Equal(t, "acme", m.Metadata["vendor"])
	assert.True(t, ic.IsStaged(a.ID))

	assert.Equal(t, 3, ic.Discard())
	assert.Equal(t, 0, s.Len())
}

// TestAssetName_ReusesPublishedName tests that a re-import keeps the published name.
func TestAssetName_ReusesPublishedName(t *testing.T) {
	s := memstore.New()
	_, err := s.Create(&object.Object{Kind: object.KindTexture, Name: "T_Wood_Renamed", Dir: "/Game/Room/Textures", StableID: "t1"})
	require.NoError(t, err)
	_, err = s.Create(&object.Object{Kind: object.KindTexture, Name: "T_Wood", Dir: "/Game/Room/Textures", StableID: "foreign"})
	require.NoError(t, err)
	ic := newContext(t, s, DefaultOptions())

	assert.Equal(t, "T_Wood_Renamed", ic.AssetName(AreaTextures, object.KindTexture, &ic.Filtered.Textures[0].Element))
	assert.Equal(t, "T_Wood_1", ic.AssetName(AreaTextures, object.KindTexture, &ic.Filtered.Textures[1].Element))
}

// TestFilterElementsToImport tests hash based skipping.
func TestFilterElementsToImport(t *testing.T) {
	s := memstore.New()
	sc := testScene()
	final, err := s.Create(&object.Object{
		Kind: object.KindTexture, Name: "T_Wood", Dir: "/Game/Room/Textures", StableID: "t1",
		Import: object.ImportData{SourceFile: "old.yaml", Hash: scene.Hash(sc.Textures[0])},
	})
	require.NoError(t, err)

	idx := new(mockIndex)
	idx.On("Lookup", mock.Anything, object.Path("/Game/Room/Textures"), object.KindTexture, "t1").
		Return(Record{Path: final.Path(), SourceFile: "old.yaml", Hash: final.Import.Hash}, true, nil)
	idx.On("Lookup", mock.Anything, object.Path("/Game/Room/Textures"), object.KindTexture, "t2").
		Return(Record{}, false, nil)
	idx.On("Lookup", mock.Anything, object.Path("/Game/Room/Meshes"), object.KindStaticMesh, "m1").
		Return(Record{}, false, errors.New("index offline"))

	ic, err := New(sc, "/Game/Room", DefaultOptions(), Services{Store: s, Index: idx})
	require.NoError(t, err)

	skipped := ic.FilterElementsToImport(context.Background())

	assert.Equal(t, 1, skipped)
	require.Len(t, ic.Filtered.Textures, 1)
	assert.Equal(t, "t2", ic.Filtered.Textures[0].ID)
	assert.Len(t, ic.Filtered.Meshes, 1)
	assert.Len(t, ic.Scene.Textures, 2)
	assert.True(t, ic.Names(AreaTextures).Contains("T_Wood"))
	assert.Equal(t, "room.yaml", final.Import.SourceFile)
	assert.Len(t, ic.Log.Filter(SeverityWarning), 1)
	idx.AssertExpectations(t)
}

// TestFinalizeAsset_FirstImport tests that a new asset is moved into the destination.
func TestFinalizeAsset_FirstImport(t *testing.T) {
	s := memstore.New()
	ic := newContext(t, s, DefaultOptions())
	staged, err := ic.StageObject(AreaTextures, object.KindTexture, ic.Filtered.Textures[0])
	require.NoError(t, err)
	staged.Set("SRGB", object.Bool(true))
	stagedPath := staged.Path()

	final, err := ic.FinalizeAsset("textures", AreaTextures, staged)
	require.NoError(t, err)

	assert.Equal(t, staged.ID, final.ID)
	assert.Equal(t, object.Path("/Game/Room/Textures/T_Wood"), final.Path())
	assert.Equal(t, object.Props{"SRGB": object.Bool(true)}, final.Baseline)
	to, ok := ic.Renames.Lookup(stagedPath)
	assert.True(t, ok)
	assert.Equal(t, final.Path(), to)
	assert.False(t, ic.IsStaged(final.ID))
}

// TestFinalizeAsset_Reimport tests the conflict policies on an existing asset.
func TestFinalizeAsset_Reimport(t *testing.T) {
	tests := []struct {
		name       string
		policy     ConflictPolicy
		wantSRGB   bool
		wantFormat string
		sameObject bool
	}{
		{"merge keeps user edit", Merge, false, "png", false},
		{"overwrite drops user edit", Overwrite, true, "png", false},
		{"ignore keeps existing", Ignore, false, "jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := memstore.New()
			existing, err := s.Create(&object.Object{
				Kind: object.KindTexture, Name: "T_Wood", Dir: "/Game/Room/Textures", StableID: "t1",
				Props:    object.Props{"SRGB": object.Bool(false), "Format": object.String("jpg")},
				Baseline: object.Props{"SRGB": object.Bool(true), "Format": object.String("jpg")},
			})
			require.NoError(t, err)

			opts := DefaultOptions()
			opts.Conflicts = map[object.Kind]ConflictPolicy{object.KindTexture: tt.policy}
			ic := newContext(t, s, opts)
			staged, err := ic.StageObject(AreaTextures, object.KindTexture, ic.Filtered.Textures[0])
			require.NoError(t, err)
			staged.Set("SRGB", object.Bool(true))
			staged.Set("Format", object.String("png"))

			final, err := ic.FinalizeAsset("textures", AreaTextures, staged)
			require.NoError(t, err)

			assert.Equal(t, existing.ID, final.ID)
			assert.Equal(t, tt.wantSRGB, final.Props["SRGB"].Bool)
			assert.Equal(t, tt.wantFormat, final.Props["Format"].Str)
			got, ok := ic.Remap.Lookup(staged.ID)
			assert.True(t, ok)
			assert.Equal(t, existing.ID, got)
			if tt.sameObject {
				assert.Equal(t, "jpg", final.Baseline["Format"].Str)
			} else {
				assert.Equal(t, "png", final.Baseline["Format"].Str)
			}
		})
	}
}

// TestFinalizeAsset_WarnsOnStagedReference tests the dependency order check.
func TestFinalizeAsset_WarnsOnStagedReference(t *testing.T) {
	s := memstore.New()
	ic := newContext(t, s, DefaultOptions())
	tex, err := ic.StageObject(AreaTextures, object.KindTexture, ic.Filtered.Textures[0])
	require.NoError(t, err)
	mat, err := ic.StageObject(AreaMaterials, object.KindMaterial, &scene.Material{Element: scene.Element{ID: "mat", Name: "M"}})
	require.NoError(t, err)
	mat.Set("Texture.Diffuse", object.StrongValue(tex.ID))

	_, err = ic.FinalizeAsset("materials", AreaMaterials, mat)
	require.NoError(t, err)

	warnings := ic.Log.ForElement("M")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "no published counterpart")
}

// TestCheckPersistence tests advisory path warnings.
func TestCheckPersistence(t *testing.T) {
	s := memstore.New()
	opts := DefaultOptions()
	opts.MaxPathLength = 20
	ic, err := New(testScene(), "/Engine/Imported", opts, Services{Store: s, Index: StoreIndex{Store: s}})
	require.NoError(t, err)

	ic.CheckPersistence("textures", "T", "/Engine/Imported/Textures/T_Wood")

	// one read-only warning from init, two from the explicit check
	assert.Len(t, ic.Log.Filter(SeverityWarning), 3)
}

func TestSuccess(t *testing.T) {
	ic := &Context{}
	assert.True(t, ic.Success())
	ic.Attempted = 2
	assert.False(t, ic.Success())
	ic.Succeeded = 1
	assert.True(t, ic.Success())
}
