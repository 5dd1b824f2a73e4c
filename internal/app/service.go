// Package service runs the assessment pipeline: resolve a model, collect and
// validate its inputs, align them with the artifact schema and classify.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/metarisk/internal/domain/catalog"
	"github.com/okian/metarisk/internal/domain/collect"
	"github.com/okian/metarisk/internal/domain/registry"
	"github.com/okian/metarisk/internal/domain/risk"
	"github.com/okian/metarisk/internal/domain/transform"
	"github.com/okian/metarisk/pkg/logger"
	"github.com/okian/metarisk/pkg/metrics"
)

// Pipeline stages, as reported in logs and metrics.
const (
	StageResolve   = "resolve"
	StageCollect   = "collect"
	StageTransform = "transform"
	StageClassify  = "classify"
)

// Assessment is the outcome of one submission.
type Assessment struct {
	ID             string    `json:"id"`
	ModelID        string    `json:"model_id"`
	ModelName      string    `json:"model_name"`
	PredictedClass int       `json:"predicted_class"`
	Probability    float64   `json:"probability"`
	Tier           risk.Tier `json:"tier"`
	Advice         string    `json:"advice"`
	Columns        []string  `json:"columns"`
	CreatedAt      time.Time `json:"created_at"`
}

// Form is everything needed to render the input form of a model.
type Form struct {
	Model    registry.ModelSpec  `json:"model"`
	Groups   []catalog.Group     `json:"groups"`
	Defaults map[string]string   `json:"defaults"`
	Options  map[string][]string `json:"options"`
	Endpoint string              `json:"endpoint"`
}

// Service orchestrates the assessment pipeline.
type Service struct {
	mu sync.RWMutex

	// pipeline serializes submissions: one run at a time.
	pipeline sync.Mutex

	catalog     *catalog.Catalog
	registry    *registry.Registry
	loader      risk.Loader
	transformer transform.Transformer
	cache       bool
	adapter     *risk.Adapter

	started   bool
	startedAt time.Time

	submitted atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64
	tiers     sync.Map // risk.Tier -> *atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog replaces the default feature catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithRegistry replaces the default model registry.
func WithRegistry(r *registry.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithLoader sets the artifact loader. Required.
func WithLoader(l risk.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithTransformer replaces the default feature transformer.
func WithTransformer(t transform.Transformer) Option {
	return func(s *Service) {
		if t != nil {
			s.transformer = t
		}
	}
}

// WithCache toggles in-memory caching of loaded artifacts.
func WithCache(enabled bool) Option {
	return func(s *Service) {
		s.cache = enabled
	}
}

// New constructs a Service over the default catalog and registry.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:     catalog.Default(),
		registry:    registry.Default(),
		transformer: transform.Default,
		cache:       true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start checks that every model can be served by the catalog and prepares the
// classifier adapter. A registry/catalog mismatch is fatal.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting assessment service...")

	if err := s.registry.Validate(s.catalog); err != nil {
		s.logger.Error(ctx, "model registry does not match the feature catalog", logger.Error(err))
		return err
	}
	if s.loader == nil {
		return ErrNoLoader
	}

	s.adapter = risk.NewAdapter(s.loader, risk.WithCache(s.cache))
	s.started = true
	s.startedAt = time.Now()
	metrics.UpdateModelsRegistered(len(s.registry.List()))

	s.logger.Info(ctx, "assessment service started",
		logger.Strings("models", s.registry.List()),
		logger.Int("features", len(s.catalog.Names())),
		logger.Bool("cacheArtifacts", s.cache),
	)
	return nil
}

// Stop marks the service as stopped. Cached artifacts are dropped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.adapter = nil
	metrics.UpdateArtifactCacheSize(0)
	s.logger.Info(context.Background(), "assessment service stopped")
}

// Models lists the models in display order.
func (s *Service) Models() []registry.ModelSpec {
	return s.registry.Specs()
}

// Model resolves one model.
func (s *Service) Model(id string) (registry.ModelSpec, error) {
	return s.registry.Resolve(id)
}

// Form returns the grouped inputs of a model with their display defaults.
func (s *Service) Form(id string) (Form, error) {
	spec, err := s.registry.Resolve(id)
	if err != nil {
		return Form{}, err
	}
	opts := make(map[string][]string)
	for _, name := range spec.Features {
		if o, ok := s.catalog.Options(name); ok {
			opts[name] = o.Labels()
		}
	}
	return Form{
		Model:    spec,
		Groups:   s.catalog.Group(spec.Features),
		Defaults: collect.Defaults(s.catalog, spec),
		Options:  opts,
		Endpoint: risk.EndpointDefinition,
	}, nil
}

// Submit runs one submission through the pipeline. raw holds the text of each
// field keyed by feature name. Submissions never run concurrently.
func (s *Service) Submit(ctx context.Context, modelID string, raw map[string]string) (Assessment, error) {
	s.mu.RLock()
	started, adapter := s.started, s.adapter
	s.mu.RUnlock()
	if !started {
		return Assessment{}, ErrNotStarted
	}

	s.pipeline.Lock()
	defer s.pipeline.Unlock()

	start := time.Now()
	s.submitted.Add(1)

	spec, err := s.registry.Resolve(modelID)
	if err != nil {
		return Assessment{}, s.fail(ctx, modelID, StageResolve, start, err)
	}

	in, err := collect.Collect(s.catalog, spec, raw)
	if err != nil {
		return Assessment{}, s.fail(ctx, spec.ID, StageCollect, start, err)
	}

	vec, err := s.transformer.Transform(in, spec)
	if err != nil {
		return Assessment{}, s.fail(ctx, spec.ID, StageTransform, start, err)
	}

	res, err := adapter.Classify(ctx, vec, spec)
	metrics.UpdateArtifactCacheSize(adapter.Cached())
	if err != nil {
		return Assessment{}, s.fail(ctx, spec.ID, StageClassify, start, err)
	}

	tier := res.Tier()
	a := Assessment{
		ID:             uuid.NewString(),
		ModelID:        spec.ID,
		ModelName:      spec.Name,
		PredictedClass: res.PredictedClass,
		Probability:    res.Probability,
		Tier:           tier,
		Advice:         tier.Advice(),
		Columns:        vec.Columns,
		CreatedAt:      time.Now().UTC(),
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000
	s.completed.Add(1)
	s.countTier(tier)
	metrics.RecordAssessment(spec.ID, string(tier))
	metrics.RecordAssessmentLatency(spec.ID, elapsed)
	metrics.RecordProbability(spec.ID, res.Probability)

	s.logger.Info(ctx, "assessment completed",
		logger.String("id", a.ID),
		logger.String("model", spec.ID),
		logger.Float64("probability", a.Probability),
		logger.String("tier", string(tier)),
		logger.Float64("latencyMs", elapsed),
	)
	return a, nil
}

// fail records an aborted submission and returns err unchanged.
func (s *Service) fail(ctx context.Context, model, stage string, start time.Time, err error) error {
	kind := ErrorKind(err)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordAssessmentError(model, stage, kind)
	metrics.RecordErrorLatency(stage, kind, elapsed)

	fields := []logger.Field{
		logger.String("model", model),
		logger.String("stage", stage),
		logger.String("kind", kind),
		logger.Error(err),
	}
	switch kind {
	case KindModelNotFound, KindInvalidInput:
		s.rejected.Add(1)
		for _, fe := range collect.FieldErrors(err) {
			fields = append(fields, logger.String("field."+fe.Feature, fe.Kind.Error()))
		}
		s.logger.Warn(ctx, "submission rejected", fields...)
	case KindMissingFeature:
		// The collector guarantees every feature; reaching here is a defect.
		s.failed.Add(1)
		s.logger.Error(ctx, "transform received an incomplete input vector", fields...)
	default:
		s.failed.Add(1)
		s.logger.Error(ctx, "assessment failed", fields...)
	}
	return err
}

func (s *Service) countTier(t risk.Tier) {
	v, _ := s.tiers.LoadOrStore(t, new(atomic.Int64))
	v.(*atomic.Int64).Add(1)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tiers := map[string]int64{}
	s.tiers.Range(func(k, v any) bool {
		tiers[string(k.(risk.Tier))] = v.(*atomic.Int64).Load()
		return true
	})

	stats := map[string]interface{}{
		"started":        s.started,
		"models":         len(s.registry.List()),
		"features":       len(s.catalog.Names()),
		"cacheArtifacts": s.cache,
		"submitted":      s.submitted.Load(),
		"completed":      s.completed.Load(),
		"rejected":       s.rejected.Load(),
		"failed":         s.failed.Load(),
		"tiers":          tiers,
	}
	if s.started {
		stats["uptime"] = time.Since(s.startedAt).Round(time.Second).String()
		stats["cachedArtifacts"] = s.adapter.Cached()
	}
	return stats
}

