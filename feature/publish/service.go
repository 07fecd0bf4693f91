package publish

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/object/memstore"
	"scene-publisher/core/progress"
	"scene-publisher/core/scene/manifest"
	"scene-publisher/core/storage"
	"scene-publisher/feature/actor"
	"scene-publisher/feature/catalog"
	"scene-publisher/feature/pipeline"
	"scene-publisher/feature/texture"

	"go.uber.org/zap"
)

// ErrInvalidRequest marks errors caused by the caller's input.
var ErrInvalidRequest = errors.New("invalid import request")

// Request overrides the configured import defaults for one pass. Empty
// fields keep the defaults.
type Request struct {
	Destination    string
	SceneMode      string
	World          string
	Policies       []string
	IgnoreActors   []string
	RespawnDeleted bool
}

// AnchorReport describes one scene anchor.
type AnchorReport struct {
	Path   object.Path   `json:"path"`
	Scene  string        `json:"scene"`
	World  string        `json:"world"`
	Actors []ActorReport `json:"actors"`
}

// ActorReport describes one live managed actor.
type ActorReport struct {
	StableID string      `json:"stable_id"`
	Kind     object.Kind `json:"kind"`
	Path     object.Path `json:"path"`
}

// Service runs import passes against the shared object graph.
type Service struct {
	mu sync.Mutex

	cfg       importer.Config
	catalog   *catalog.Catalog
	store     *memstore.Store
	client    storage.Client
	bucket    string
	publisher *texture.Publisher
	logger    *zap.Logger
}

// NewService creates a service. Without a catalog the graph lives in memory
// for the lifetime of the service. client may be nil when no object storage
// is configured.
func NewService(cfg importer.Config, cat *catalog.Catalog, client storage.Client, bucket string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{cfg: cfg, catalog: cat, client: client, bucket: bucket, logger: logger}
	if cat == nil {
		s.store = memstore.New()
	}
	if client != nil && cfg.UploadTextures {
		s.publisher = texture.NewPublisher(client, bucket)
	}
	return s
}

// options merges req over the configured defaults.
func (s *Service) options(req Request) (importer.Options, object.Path, error) {
	cfg := s.cfg
	if req.SceneMode != "" {
		cfg.SceneMode = req.SceneMode
	}
	if req.World != "" {
		cfg.World = req.World
	}
	if len(req.Policies) > 0 {
		cfg.Policies = append(append([]string(nil), cfg.Policies...), req.Policies...)
	}
	if len(req.IgnoreActors) > 0 {
		cfg.IgnoreActors = append(append([]string(nil), cfg.IgnoreActors...), req.IgnoreActors...)
	}
	cfg.RespawnDeleted = cfg.RespawnDeleted || req.RespawnDeleted

	opts, err := cfg.Options()
	if err != nil {
		return importer.Options{}, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	dest := cfg.Destination
	if req.Destination != "" {
		dest = req.Destination
	}
	if !strings.HasPrefix(dest, "/") {
		return importer.Options{}, "", fmt.Errorf("%w: destination %q must be absolute", ErrInvalidRequest, dest)
	}
	return opts, object.Path(dest), nil
}

// graph returns the store and index a pass runs against.
func (s *Service) graph(ctx context.Context) (*memstore.Store, importer.AssetIndex, error) {
	if s.catalog == nil {
		return s.store, importer.StoreIndex{Store: s.store}, nil
	}
	st, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return st, s.catalog.Index(), nil
}

func (s *Service) fetcher(m *manifest.Manifest) texture.Fetcher {
	r := texture.Router{}
	if m.SourceFile != "" {
		r.Files = texture.FileFetcher{Root: filepath.Dir(m.SourceFile)}
	}
	if s.client != nil {
		r.Storage = texture.StorageFetcher{Client: s.client, Bucket: s.bucket}
	}
	return r
}

// Import runs one pass over m and saves the graph.
func (s *Service) Import(ctx context.Context, m *manifest.Manifest, req Request) (*pipeline.Result, error) {
	opts, dest, err := s.options(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, index, err := s.graph(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := pipeline.Run(ctx, &m.Scene, dest, opts, pipeline.Services{
		Services: importer.Services{
			Store:    st,
			Index:    index,
			Logger:   s.logger,
			Reporter: progress.NewLogger(s.logger),
		},
		Fetcher:    s.fetcher(m),
		Translator: manifest.NewTranslator(m, true),
		Publisher:  s.publisher,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if s.catalog != nil {
		if _, err := s.catalog.Save(ctx, st); err != nil {
			return nil, err
		}
	}
	s.logger.Info("import finished",
		zap.String("scene", m.Name),
		zap.String("pass", res.PassID),
		zap.Bool("success", res.Success),
		zap.Bool("cancelled", res.Cancelled),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

// Anchors lists the anchors below prefix with their live actors.
func (s *Service) Anchors(ctx context.Context, prefix object.Path) ([]AnchorReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, _, err := s.graph(ctx)
	if err != nil {
		return nil, err
	}
	reports := []AnchorReport{}
	for _, a := range actor.Anchors(st, prefix) {
		r := AnchorReport{Path: a.Path(), Scene: a.Str("Scene"), World: a.Str("World"), Actors: []ActorReport{}}
		for _, o := range actor.ManagedActors(st, a) {
			r.Actors = append(r.Actors, ActorReport{StableID: o.StableID, Kind: o.Kind, Path: o.Path()})
		}
		reports = append(reports, r)
	}
	return reports, nil
}
