package audit

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"audit-portal-go/internal/region"
	"audit-portal-go/pkg/model"
)

var (
	// ErrNotFound is returned when an audit order does not exist or belongs to another user
	ErrNotFound = errors.New("audit not found")
	// ErrInvalidURL is returned for targets that are not absolute http(s) URLs
	ErrInvalidURL = errors.New("invalid target URL")
	// ErrInvalidRegion is returned for an unknown region override
	ErrInvalidRegion = errors.New("invalid region")
	// ErrInvalidTransition is returned when a callback would move an audit backwards
	ErrInvalidTransition = errors.New("invalid stage transition")
)

// DefaultListLimit caps the number of orders returned by List
const DefaultListLimit = 50

// Resolver picks the region an audit is dispatched to
type Resolver interface {
	Resolve(ctx context.Context, in region.SelectionInput) model.RegionSelection
	Registry() *region.Registry
}

// Dispatcher starts audits on a scanning backend and reports their progress
type Dispatcher interface {
	StartAudit(ctx context.Context, region model.Region, targetURL string) (*StartResponse, error)
	GetStatus(ctx context.Context, region model.Region, auditID string) (*StatusResponse, error)
}

// Service handles audit submission and progress tracking
type Service struct {
	resolver   Resolver
	dispatcher Dispatcher
	store      Store
	log        logr.Logger
	started    *prometheus.CounterVec
}

// NewService creates a new audit service. reg may be nil.
func NewService(resolver Resolver, dispatcher Dispatcher, store Store, log logr.Logger, reg prometheus.Registerer) *Service {
	started := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audit_portal",
		Subsystem: "audits",
		Name:      "started_total",
		Help:      "Audit start requests by region and result.",
	}, []string{"region", "result"})
	if reg != nil {
		reg.MustRegister(started)
	}

	return &Service{
		resolver:   resolver,
		dispatcher: dispatcher,
		store:      store,
		log:        log,
		started:    started,
	}
}

// ValidateTargetURL checks that raw is an absolute http or https URL with a host
func ValidateTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if u.Hostname() == "" {
		return "", ErrInvalidURL
	}
	return raw, nil
}

// ResolveInput turns client-supplied hints into selector input
func ResolveInput(targetURL, override, timezone string) (region.SelectionInput, error) {
	in := region.SelectionInput{TargetURL: targetURL}
	if override != "" {
		id, ok := region.ParseRegionID(override)
		if !ok {
			return in, ErrInvalidRegion
		}
		in.Override = id
	}
	if timezone != "" {
		in.LocaleRegion = region.ClassifyByUserLocale(region.StaticEnvironment(timezone))
	}
	return in, nil
}

// Submit resolves a region, starts the audit there and records the order
func (s *Service) Submit(ctx context.Context, userID int, req model.AuditSubmitRequest) (*model.AuditSubmitResponse, error) {
	target, err := ValidateTargetURL(req.URL)
	if err != nil {
		return nil, err
	}

	in, err := ResolveInput(target, req.Region, req.Timezone)
	if err != nil {
		return nil, err
	}

	sel := s.resolver.Resolve(ctx, in)
	chosen := s.resolver.Registry().MustGet(sel.ChosenRegion)

	started, err := s.dispatcher.StartAudit(ctx, chosen, target)
	if err != nil {
		s.started.WithLabelValues(string(chosen.ID), "error").Inc()
		return nil, fmt.Errorf("failed to start audit in region %s: %w", chosen.ID, err)
	}
	s.started.WithLabelValues(string(chosen.ID), "ok").Inc()

	order := &model.AuditOrder{
		AuditID:   started.AuditID,
		UserID:    userID,
		TargetURL: target,
		Region:    chosen.ID,
		Stage:     started.Stage,
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}

	s.log.Info("[AUDIT] audit submitted", "audit_id", order.AuditID, "user_id", userID, "region", chosen.ID)

	return &model.AuditSubmitResponse{
		AuditID:       order.AuditID,
		Region:        chosen.ID,
		DisplayName:   chosen.DisplayName,
		EgressAddress: chosen.FixedEgressAddress,
		Stage:         order.Stage,
	}, nil
}

// Get returns one of the user's audits with its progress. Audits still in
// flight are refreshed from the region running them; if that fails the
// stored stage is returned.
func (s *Service) Get(ctx context.Context, userID int, auditID string) (*model.AuditStatusResponse, error) {
	order, err := s.store.GetByAuditID(ctx, auditID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotFound
	}

	if !order.Stage.Terminal() {
		s.refresh(ctx, order)
	}
	return &model.AuditStatusResponse{AuditOrder: *order, Progress: order.Stage.Progress()}, nil
}

func (s *Service) refresh(ctx context.Context, order *model.AuditOrder) {
	chosen := s.resolver.Registry().MustGet(order.Region)
	status, err := s.dispatcher.GetStatus(ctx, chosen, order.AuditID)
	if err != nil {
		s.log.V(1).Info("[AUDIT] status refresh failed", "audit_id", order.AuditID, "error", err.Error())
		return
	}
	if status.Stage == order.Stage || !order.Stage.CanTransition(status.Stage) {
		return
	}
	if err := s.store.UpdateStage(ctx, order.AuditID, order.Stage, status.Stage, status.Message); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			// a callback moved the order first; report what is stored
			if current, gerr := s.store.GetByAuditID(ctx, order.AuditID); gerr == nil {
				*order = *current
			}
			return
		}
		s.log.Error(err, "[AUDIT] failed to store refreshed stage", "audit_id", order.AuditID)
		return
	}
	order.Stage = status.Stage
	order.Message = status.Message
}

// List returns the user's most recent audits
func (s *Service) List(ctx context.Context, userID int) ([]model.AuditStatusResponse, error) {
	orders, err := s.store.ListByUser(ctx, userID, DefaultListLimit)
	if err != nil {
		return nil, err
	}

	resp := make([]model.AuditStatusResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, model.AuditStatusResponse{AuditOrder: o, Progress: o.Stage.Progress()})
	}
	return resp, nil
}

// HandleCallback applies a stage change reported by the scan pipeline.
// Repeating the current stage is a no-op.
func (s *Service) HandleCallback(ctx context.Context, cb model.AuditCallback) error {
	order, err := s.store.GetByAuditID(ctx, cb.AuditID)
	if err != nil {
		return err
	}

	if order.Stage == cb.Stage {
		return nil
	}
	if !order.Stage.CanTransition(cb.Stage) {
		s.log.Info("[AUDIT] rejected stage transition", "audit_id", cb.AuditID, "from", order.Stage, "to", cb.Stage)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Stage, cb.Stage)
	}

	if err := s.store.UpdateStage(ctx, cb.AuditID, order.Stage, cb.Stage, cb.Message); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			s.log.Info("[AUDIT] stage changed concurrently", "audit_id", cb.AuditID, "from", order.Stage, "to", cb.Stage)
		}
		return err
	}

	s.log.Info("[AUDIT] stage updated", "audit_id", cb.AuditID, "from", order.Stage, "to", cb.Stage)
	return nil
}
