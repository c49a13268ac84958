package mocks

import (
	"context"
	"time"

	"github.com/rpggio/synchrokit/internal/domain/activity"
	"github.com/rpggio/synchrokit/internal/domain/descriptor"
	"github.com/stretchr/testify/mock"
)

// DescriptorRepository is a mock for descriptor.Repository.
type DescriptorRepository struct {
	mock.Mock
}

func (m *DescriptorRepository) Create(ctx context.Context, tenantID string, desc *descriptor.ObjectDescriptor) error {
	args := m.Called(ctx, tenantID, desc)
	return args.Error(0)
}

func (m *DescriptorRepository) Get(ctx context.Context, tenantID string, identifier int) (*descriptor.ObjectDescriptor, error) {
	args := m.Called(ctx, tenantID, identifier)
	if desc, ok := args.Get(0).(*descriptor.ObjectDescriptor); ok {
		return desc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DescriptorRepository) Update(ctx context.Context, tenantID string, desc *descriptor.ObjectDescriptor) error {
	args := m.Called(ctx, tenantID, desc)
	return args.Error(0)
}

func (m *DescriptorRepository) Delete(ctx context.Context, tenantID string, identifier int) error {
	args := m.Called(ctx, tenantID, identifier)
	return args.Error(0)
}

func (m *DescriptorRepository) List(ctx context.Context, tenantID string, opts descriptor.ListOptions) ([]*descriptor.ObjectDescriptor, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]*descriptor.ObjectDescriptor); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DescriptorRepository) RecordUse(ctx context.Context, tenantID string, identifier int, at time.Time) (*descriptor.ObjectDescriptor, error) {
	args := m.Called(ctx, tenantID, identifier, at)
	if desc, ok := args.Get(0).(*descriptor.ObjectDescriptor); ok {
		return desc, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
