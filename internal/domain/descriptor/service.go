package descriptor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/synchrokit/internal/domain/activity"
	"github.com/rpggio/synchrokit/internal/repository"
)

// Service owns descriptors on behalf of tenants and applies the use policy.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used by RecordUse.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new descriptor service. activities and logger may be nil.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		repo:       repo,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest defines descriptor registration inputs.
type RegisterRequest struct {
	Identifier   int
	Name         string
	LastUsedDate *time.Time
	UsedCount    int
}

// UpdateRequest replaces the fields whose pointer is set.
type UpdateRequest struct {
	Identifier   int
	Name         *string
	LastUsedDate *time.Time
	UsedCount    *int
}

// Register stores a new descriptor.
func (s *Service) Register(ctx context.Context, tenantID string, req RegisterRequest) (*ObjectDescriptor, error) {
	desc := new(ObjectDescriptor)
	desc.SetIdentifier(req.Identifier)
	desc.SetName(req.Name)
	desc.SetUsedCount(req.UsedCount)
	if req.LastUsedDate != nil {
		desc.SetLastUsedDate(*req.LastUsedDate)
	}

	if err := s.repo.Create(ctx, tenantID, desc); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("registering descriptor: %w", err)
	}

	s.logger.Debug("descriptor registered", "tenant_id", tenantID, "identifier", desc.Identifier())
	s.logActivity(ctx, tenantID, desc, activity.TypeDescriptorRegistered, fmt.Sprintf("registered descriptor %d", desc.Identifier()))

	return desc, nil
}

// Get fetches a descriptor by identifier.
func (s *Service) Get(ctx context.Context, tenantID string, identifier int) (*ObjectDescriptor, error) {
	desc, err := s.repo.Get(ctx, tenantID, identifier)
	if err != nil {
		return nil, mapNotFound(err, "getting descriptor")
	}
	return desc, nil
}

// List returns descriptors in the requested order.
func (s *Service) List(ctx context.Context, tenantID string, opts ListOptions) ([]*ObjectDescriptor, error) {
	if !opts.OrderBy.Valid() || opts.Limit < 0 || opts.Offset < 0 {
		return nil, ErrInvalidInput
	}
	if opts.OrderBy == "" {
		opts.OrderBy = OrderByIdentifier
	}
	return s.repo.List(ctx, tenantID, opts)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, tenantID string, req UpdateRequest) (*ObjectDescriptor, error) {
	desc, err := s.repo.Get(ctx, tenantID, req.Identifier)
	if err != nil {
		return nil, mapNotFound(err, "getting descriptor")
	}

	if req.Name != nil {
		desc.SetName(*req.Name)
	}
	if req.LastUsedDate != nil {
		desc.SetLastUsedDate(*req.LastUsedDate)
	}
	if req.UsedCount != nil {
		desc.SetUsedCount(*req.UsedCount)
	}

	if err := s.repo.Update(ctx, tenantID, desc); err != nil {
		return nil, mapNotFound(err, "updating descriptor")
	}

	s.logActivity(ctx, tenantID, desc, activity.TypeDescriptorUpdated, fmt.Sprintf("updated descriptor %d", desc.Identifier()))

	return desc, nil
}

// RecordUse increments the use count and stamps the last used date with the
// service clock.
func (s *Service) RecordUse(ctx context.Context, tenantID string, identifier int) (*ObjectDescriptor, error) {
	desc, err := s.repo.RecordUse(ctx, tenantID, identifier, s.now())
	if err != nil {
		return nil, mapNotFound(err, "recording use")
	}

	s.logger.Debug("descriptor used", "tenant_id", tenantID, "identifier", identifier, "used_count", desc.UsedCount())
	s.logActivity(ctx, tenantID, desc, activity.TypeDescriptorUsed, fmt.Sprintf("used descriptor %d", identifier))

	return desc, nil
}

// Delete removes a descriptor.
func (s *Service) Delete(ctx context.Context, tenantID string, identifier int) error {
	if err := s.repo.Delete(ctx, tenantID, identifier); err != nil {
		return mapNotFound(err, "deleting descriptor")
	}

	desc := new(ObjectDescriptor)
	desc.SetIdentifier(identifier)
	s.logActivity(ctx, tenantID, desc, activity.TypeDescriptorDeleted, fmt.Sprintf("deleted descriptor %d", identifier))

	return nil
}

func (s *Service) logActivity(ctx context.Context, tenantID string, desc *ObjectDescriptor, typ activity.ActivityType, summary string) {
	if s.activities == nil {
		return
	}

	entry := &activity.ActivityEntry{
		DescriptorID: desc.Identifier(),
		ActivityType: typ,
		Summary:      summary,
		Details:      activityDetails(desc),
		CreatedAt:    s.now(),
	}
	if err := s.activities.Log(ctx, tenantID, entry); err != nil {
		s.logger.Warn("failed to log activity", "tenant_id", tenantID, "identifier", desc.Identifier(), "type", typ, "error", err)
	}
}

func activityDetails(desc *ObjectDescriptor) string {
	details := map[string]any{
		"name":       desc.Name(),
		"used_count": desc.UsedCount(),
	}
	if !desc.LastUsedDate().IsZero() {
		details["last_used_date"] = desc.LastUsedDate().Format(time.RFC3339Nano)
	}
	data, err := json.Marshal(details)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func mapNotFound(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrDescriptorNotFound
	case errors.Is(err, repository.ErrOutOfRange):
		return ErrUseCountExhausted
	}
	return fmt.Errorf("%s: %w", op, err)
}
