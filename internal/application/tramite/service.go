package tramite

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/domain/tenancy"
	"github.com/tramites/backend/internal/domain/tramite"
	"github.com/tramites/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultPublicCacheTTL is how long a public view stays cached
const DefaultPublicCacheTTL = 30 * time.Second

// publicLoadTimeout bounds a shared public view load
const publicLoadTimeout = 5 * time.Second

var (
	// ErrTenantInactive is returned when filing for a deactivated tenant
	ErrTenantInactive = shared.NewDomainError("TENANT_INACTIVE", "Tenant is not active")
	// ErrCategoryInactive is returned when filing in a deactivated category
	ErrCategoryInactive = shared.NewDomainError("CATEGORY_INACTIVE", "Category is not active")
	// ErrReviewerRequired is returned when an actor who cannot review moves a
	// trámite to ASSIGNED without naming a reviewer
	ErrReviewerRequired = shared.NewDomainError("REVIEWER_REQUIRED", "Assigning a trámite requires a reviewer; use the reviewer endpoint")
)

// Service files trámites, drives their lifecycle and answers public
// status lookups. Every method except LookupPublic requires a tenant scope
// bound to ctx.
type Service struct {
	tramites       tramite.Repository
	categories     tramite.CategoryRepository
	tenants        identity.TenantRepository
	users          identity.UserRepository
	allocator      *allocator
	cache          tramite.PublicViewCache
	cacheTTL       time.Duration
	eventPublisher shared.EventPublisher
	metrics        Metrics
	logger         *zap.Logger
	now            func() time.Time
	lookups        singleflight.Group
}

// ServiceConfig holds the collaborators of the Service
type ServiceConfig struct {
	Tramites       tramite.Repository
	Categories     tramite.CategoryRepository
	Tenants        identity.TenantRepository
	Users          identity.UserRepository
	Counters       radicacion.CounterStore
	Retry          RetryPolicy
	Cache          tramite.PublicViewCache
	CacheTTL       time.Duration
	EventPublisher shared.EventPublisher
	Metrics        Metrics
	Logger         *zap.Logger
	Clock          func() time.Time
}

// NewService creates a new Service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultPublicCacheTTL
	}

	return &Service{
		tramites:       cfg.Tramites,
		categories:     cfg.Categories,
		tenants:        cfg.Tenants,
		users:          cfg.Users,
		allocator:      newAllocator(cfg.Counters, cfg.Retry, logger),
		cache:          cfg.Cache,
		cacheTTL:       ttl,
		eventPublisher: cfg.EventPublisher,
		metrics:        metrics,
		logger:         logger,
		now:            clock,
	}
}

// Create files a new trámite. The filing number is drawn from the
// (tenant, category, current year) counter and the trámite is inserted in
// the same transaction, so numbers of one key are consecutive, never
// reused, and never lost to a rejected filing.
func (s *Service) Create(ctx context.Context, req CreateTramiteRequest) (*TramiteResponse, error) {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	tenantID, err := effectiveTenant(scope, req.TenantID)
	if err != nil {
		return nil, err
	}

	requesterID := req.RequesterID
	if requesterID == uuid.Nil {
		if actor, err := tenancy.ActorFromContext(ctx); err == nil {
			requesterID = actor.UserID
		}
	}
	if requesterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Requester is required")
	}

	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive {
		return nil, ErrTenantInactive
	}

	category, err := s.categories.FindByID(ctx, tenantID, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, ErrCategoryInactive
	}

	requester, err := s.users.FindByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !requester.BelongsTo(tenantID) {
		return nil, shared.ErrNotFound
	}

	details := tramite.Details{
		Subject:            req.Subject,
		ProjectDescription: req.ProjectDescription,
		PropertyAddress:    req.PropertyAddress,
		Observations:       req.Observations,
		NextDueAt:          req.NextDueAt,
		CompleteBy:         req.CompleteBy,
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	var t *tramite.Tramite
	filingNumber, err := s.allocateNumber(ctx, tenant, category, now.Year(), func(ctx context.Context, filingNumber string) error {
		var err error
		if t, err = tramite.NewTramite(tenantID, filingNumber, category.ID, requester.ID, details, now); err != nil {
			return err
		}
		return s.tramites.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordFiled(ctx, category.Code)
	s.logger.Info("Trámite filed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("tramite_id", t.ID.String()),
		zap.String("filing_number", filingNumber))
	s.publishEvents(ctx, t)

	return ToTramiteResponse(t), nil
}

// allocateNumber draws the next counter value, formats it and hands it to
// file before the increment commits. An error from file undoes the draw.
func (s *Service) allocateNumber(ctx context.Context, tenant *identity.Tenant, category *tramite.Category, year int, file func(ctx context.Context, filingNumber string) error) (string, error) {
	key := radicacion.CounterKey{
		TenantID:     tenant.ID,
		CategoryCode: category.Code,
		Year:         year,
	}

	var (
		filingNumber string
		fileErr      error
		attempts     int
		err          error
	)
	issue := func(ctx context.Context, value int64) error {
		number, err := radicacion.Format(radicacion.Number{
			TenantCode:   tenant.Code,
			CategoryCode: category.Code,
			Year:         year,
			Counter:      value,
		})
		if err != nil {
			return err
		}
		if fileErr = file(ctx, number); fileErr != nil {
			return fileErr
		}
		filingNumber = number
		return nil
	}

	start := time.Now()
	labels := telemetry.OperationLabels("allocate_filing_number", map[string]string{
		telemetry.ProfilingLabelCategory: category.Code,
	})
	telemetry.WithProfilingLabels(ctx, labels, func(ctx context.Context) {
		_, attempts, err = s.allocator.next(ctx, key, issue)
	})
	if fileErr != nil {
		return "", fileErr
	}
	s.metrics.RecordAllocation(ctx, category.Code, attempts, time.Since(start), err)
	if err != nil {
		s.logger.Error("Filing number allocation failed",
			zap.String("counter", key.String()),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return "", err
	}
	return filingNumber, nil
}

// Get returns a trámite visible in the current scope
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TramiteResponse, error) {
	t, err := s.tramites.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToTramiteResponse(t), nil
}

// List returns a page of trámites visible in the current scope
func (s *Service) List(ctx context.Context, filter TramiteListFilter) (shared.Paginated[TramiteResponse], error) {
	categoryID, err := optionalUUID(filter.CategoryID)
	if err != nil {
		return shared.Paginated[TramiteResponse]{}, err
	}
	reviewerID, err := optionalUUID(filter.ReviewerID)
	if err != nil {
		return shared.Paginated[TramiteResponse]{}, err
	}

	domainFilter := tramite.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.SortBy,
			OrderDir: "asc",
			Search:   filter.Search,
		},
		CategoryID: categoryID,
		ReviewerID: reviewerID,
	}
	if filter.SortDesc || filter.SortBy == "" {
		domainFilter.OrderDir = "desc"
	}
	if filter.Status != "" {
		status := tramite.Status(filter.Status)
		if !status.IsValid() {
			return shared.Paginated[TramiteResponse]{}, shared.NewDomainError("INVALID_INPUT", "Unknown status "+filter.Status)
		}
		domainFilter.Status = status
	}
	domainFilter.Filter = domainFilter.Filter.Normalized()

	items, total, err := s.tramites.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[TramiteResponse]{}, err
	}

	responses := make([]TramiteResponse, len(items))
	for i := range items {
		responses[i] = *ToTramiteResponse(&items[i])
	}
	return shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize), nil
}

// Transition moves a trámite to req.Status if the lifecycle allows it.
// Rejected transitions return *tramite.IllegalTransitionError and write nothing.
// Moving to ASSIGNED takes the acting reviewer as the trámite's reviewer;
// actors who cannot review must go through AssignReviewer.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, req TransitionRequest) (*TramiteResponse, error) {
	to := tramite.Status(req.Status)
	if !to.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown status "+req.Status)
	}
	if to == tramite.StatusAssigned {
		return s.selfAssign(ctx, id, req.Comment)
	}
	actorID := actorIDFrom(ctx)

	var from tramite.Status
	t, err := s.tramites.Update(ctx, id, func(t *tramite.Tramite) error {
		from = t.Status
		return t.Transition(to, req.Comment, actorID, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(ctx, from, to)
	s.logger.Info("Trámite status changed",
		zap.String("tenant_id", t.TenantID.String()),
		zap.String("tramite_id", t.ID.String()),
		zap.String("from", from.String()),
		zap.String("to", to.String()))
	s.invalidatePublicView(ctx, t.FilingNumber)
	s.publishEvents(ctx, t)

	return ToTramiteResponse(t), nil
}

// selfAssign makes the acting user the reviewer of the trámite
func (s *Service) selfAssign(ctx context.Context, id uuid.UUID, comment string) (*TramiteResponse, error) {
	actor, err := tenancy.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanReview() {
		return nil, ErrReviewerRequired
	}
	reviewer, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, tramite.ErrInvalidReviewer
		}
		return nil, err
	}
	return s.assign(ctx, id, reviewer, comment, actor.UserID)
}

// AssignReviewer records the reviewer of a trámite and moves it to
// ASSIGNED as one change. Only administrators may assign.
func (s *Service) AssignReviewer(ctx context.Context, id uuid.UUID, req AssignReviewerRequest) (*TramiteResponse, error) {
	actor, err := tenancy.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	reviewer, err := s.users.FindByID(ctx, req.ReviewerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, tramite.ErrInvalidReviewer
		}
		return nil, err
	}
	return s.assign(ctx, id, reviewer, req.Comment, actor.UserID)
}

func (s *Service) assign(ctx context.Context, id uuid.UUID, reviewer *identity.User, comment string, actorID uuid.UUID) (*TramiteResponse, error) {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var from tramite.Status
	t, err := s.tramites.Update(ctx, id, func(t *tramite.Tramite) error {
		from = t.Status
		return t.AssignReviewer(reviewer, scope, comment, actorID, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(ctx, from, t.Status)
	s.logger.Info("Reviewer assigned",
		zap.String("tenant_id", t.TenantID.String()),
		zap.String("tramite_id", t.ID.String()),
		zap.String("reviewer_id", reviewer.ID.String()))
	s.invalidatePublicView(ctx, t.FilingNumber)
	s.publishEvents(ctx, t)

	return ToTramiteResponse(t), nil
}

// LookupPublic answers an anonymous status query by filing number. The
// input is normalized and must parse before any storage is touched.
// Concurrent lookups of one number share a single load.
func (s *Service) LookupPublic(ctx context.Context, raw string) (resp *PublicStatusResponse, err error) {
	cacheHit := false
	defer func() { s.metrics.RecordPublicLookup(ctx, cacheHit, err) }()

	filingNumber := radicacion.Normalize(raw)
	if _, err := radicacion.Parse(filingNumber); err != nil {
		return nil, err
	}

	if s.cache != nil {
		view, cacheErr := s.cache.Get(ctx, filingNumber)
		if cacheErr != nil {
			s.logger.Warn("Public view cache read failed",
				zap.String("filing_number", filingNumber),
				zap.Error(cacheErr))
		}
		if view != nil {
			cacheHit = true
			return ToPublicStatusResponse(view), nil
		}
	}

	// The load is shared, so no single caller's cancellation may end it
	ch := s.lookups.DoChan(filingNumber, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publicLoadTimeout)
		defer cancel()
		return s.loadPublicView(loadCtx, filingNumber)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return ToPublicStatusResponse(res.Val.(*tramite.PublicView)), nil
	}
}

func (s *Service) loadPublicView(ctx context.Context, filingNumber string) (*tramite.PublicView, error) {
	t, err := s.tramites.FindByFilingNumber(ctx, filingNumber)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenants.FindByID(ctx, t.TenantID)
	if err != nil {
		return nil, err
	}
	category, err := s.categories.FindByID(ctx, t.TenantID, t.CategoryID)
	if err != nil {
		return nil, err
	}

	view := tramite.NewPublicView(t, tenant.Name, category.Name, s.now())
	if s.cache != nil {
		if err := s.cache.Set(ctx, view, s.cacheTTL); err != nil {
			s.logger.Warn("Public view cache write failed",
				zap.String("filing_number", filingNumber),
				zap.Error(err))
		}
	}
	return view, nil
}

func (s *Service) invalidatePublicView(ctx context.Context, filingNumber string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, filingNumber); err != nil {
		s.logger.Warn("Public view cache invalidation failed",
			zap.String("filing_number", filingNumber),
			zap.Error(err))
	}
}

// publishEvents hands the aggregate's pending events to the bus. Publishing
// failures are logged; the state change is already committed.
func (s *Service) publishEvents(ctx context.Context, t *tramite.Tramite) {
	events := t.GetDomainEvents()
	t.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish trámite events",
			zap.String("tramite_id", t.ID.String()),
			zap.Error(err))
	}
}

// effectiveTenant picks the tenant a new trámite is filed under. Scoped
// actors may only file in their own tenant; naming another one looks like a
// missing tenant.
func effectiveTenant(scope tenancy.Scope, requested *uuid.UUID) (uuid.UUID, error) {
	if scope.IsGlobal() {
		if requested == nil || *requested == uuid.Nil {
			return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "Tenant is required")
		}
		return *requested, nil
	}
	if requested != nil && *requested != uuid.Nil && *requested != scope.TenantID() {
		return uuid.Nil, shared.ErrNotFound
	}
	return scope.TenantID(), nil
}

func actorIDFrom(ctx context.Context) uuid.UUID {
	if actor, err := tenancy.ActorFromContext(ctx); err == nil {
		return actor.UserID
	}
	return uuid.Nil
}

func optionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Malformed identifier "+raw)
	}
	return &id, nil
}
