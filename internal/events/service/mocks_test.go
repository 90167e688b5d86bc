package service_test

import (
	"context"

	"evento/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateEvent(ctx context.Context, ev *models.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockDBLayer) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockDBLayer) BrowseEvents(ctx context.Context, name string) ([]*models.Event, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockDBLayer) SaveEvent(ctx context.Context, ev *models.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) CountEvents(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockEventLock struct {
	mock.Mock
	released int
}

func (m *MockEventLock) Acquire(ctx context.Context, eventID string) (func(), error) {
	args := m.Called(ctx, eventID)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func() { m.released++ }, nil
}

type MockKafkaProducer struct {
	mock.Mock
}

func (m *MockKafkaProducer) PublishEventCreated(ctx context.Context, ev *models.Event) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *MockKafkaProducer) PublishEventUpdated(ctx context.Context, ev *models.Event) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *MockKafkaProducer) PublishEventDeleted(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

func (m *MockKafkaProducer) PublishTicketsAdded(ctx context.Context, ev *models.Event, added []models.Ticket) error {
	return m.Called(ctx, ev, added).Error(0)
}

func (m *MockKafkaProducer) PublishTicketsPurchased(ctx context.Context, ev *models.Event, user models.User, purchased []models.Ticket) error {
	return m.Called(ctx, ev, user, purchased).Error(0)
}

func (m *MockKafkaProducer) PublishTicketsCanceled(ctx context.Context, ev *models.Event, user models.User, canceled []models.Ticket) error {
	return m.Called(ctx, ev, user, canceled).Error(0)
}

type MockPassGenerator struct {
	mock.Mock
}

func (m *MockPassGenerator) PNG(ticket models.Ticket) ([]byte, error) {
	args := m.Called(ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockInventoryNotifier struct {
	mock.Mock
}

func (m *MockInventoryNotifier) Broadcast(ev *models.Event) {
	m.Called(ev)
}

func (m *MockInventoryNotifier) BroadcastDeleted(eventID string) {
	m.Called(eventID)
}
