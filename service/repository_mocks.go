package service

import (
	"context"

	"raffler/events"
	"raffler/models"

	"github.com/stretchr/testify/mock"
)

// MockListingRepository is a mock implementation of ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) SetStatus(ctx context.Context, id string, status models.ListingStatus) (*models.Listing, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) AddTicketsSold(ctx context.Context, id string, qty int) (*models.Listing, error) {
	args := m.Called(ctx, id, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) List(ctx context.Context, status *models.ListingStatus) ([]*models.Listing, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *MockListingRepository) ListExpiredActive(ctx context.Context) ([]*models.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *MockListingRepository) ListBySeller(ctx context.Context, sellerAliasID string) ([]*models.Listing, error) {
	args := m.Called(ctx, sellerAliasID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Listing), args.Error(1)
}

// MockTicketPurchaseRepository is a mock implementation of TicketPurchaseRepository
type MockTicketPurchaseRepository struct {
	mock.Mock
}

func (m *MockTicketPurchaseRepository) Create(ctx context.Context, purchase *models.TicketPurchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockTicketPurchaseRepository) GetByID(ctx context.Context, id string) (*models.TicketPurchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketPurchase), args.Error(1)
}

func (m *MockTicketPurchaseRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.TicketPurchase, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketPurchase), args.Error(1)
}

func (m *MockTicketPurchaseRepository) ListByListing(ctx context.Context, listingID string) ([]*models.TicketPurchase, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TicketPurchase), args.Error(1)
}

// MockTicketRangeRepository is a mock implementation of TicketRangeRepository
type MockTicketRangeRepository struct {
	mock.Mock
}

func (m *MockTicketRangeRepository) Create(ctx context.Context, tr *models.TicketRange) error {
	args := m.Called(ctx, tr)
	return args.Error(0)
}

func (m *MockTicketRangeRepository) ListByListing(ctx context.Context, listingID string) ([]*models.TicketRange, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TicketRange), args.Error(1)
}

func (m *MockTicketRangeRepository) ListByPurchase(ctx context.Context, purchaseID string) ([]*models.TicketRange, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TicketRange), args.Error(1)
}

func (m *MockTicketRangeRepository) GetContainingTicket(ctx context.Context, listingID string, ticket int) ([]*models.TicketRange, error) {
	args := m.Called(ctx, listingID, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TicketRange), args.Error(1)
}

// MockRaffleOutcomeRepository is a mock implementation of RaffleOutcomeRepository
type MockRaffleOutcomeRepository struct {
	mock.Mock
}

func (m *MockRaffleOutcomeRepository) Create(ctx context.Context, outcome *models.RaffleOutcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

func (m *MockRaffleOutcomeRepository) GetByListing(ctx context.Context, listingID string) (*models.RaffleOutcome, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RaffleOutcome), args.Error(1)
}

// MockAuditEventRepository is a mock implementation of AuditEventRepository
type MockAuditEventRepository struct {
	mock.Mock
}

func (m *MockAuditEventRepository) Record(ctx context.Context, event *models.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditEventRepository) ListByTarget(ctx context.Context, targetType, targetID string, limit int) ([]*models.AuditEvent, error) {
	args := m.Called(ctx, targetType, targetID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditEvent), args.Error(1)
}

func (m *MockAuditEventRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditEvent), args.Error(1)
}

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) AuthorizeAndCapture(ctx context.Context, listingID, buyerAliasID string, qty int, amount int64) (string, error) {
	args := m.Called(ctx, listingID, buyerAliasID, qty, amount)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) Confirm(ctx context.Context, paymentRef string) (models.PaymentStatus, error) {
	args := m.Called(ctx, paymentRef)
	return args.Get(0).(models.PaymentStatus), args.Error(1)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, paymentRef, reason string) error {
	args := m.Called(ctx, paymentRef, reason)
	return args.Error(0)
}

// MockEligibilityGate is a mock implementation of EligibilityGate
type MockEligibilityGate struct {
	mock.Mock
}

func (m *MockEligibilityGate) CanParticipate(ctx context.Context, aliasID string) (bool, error) {
	args := m.Called(ctx, aliasID)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// CapturingEventPublisher collects published events for assertion in tests
type CapturingEventPublisher struct {
	Events []events.Event
}

func (p *CapturingEventPublisher) Publish(event events.Event) {
	p.Events = append(p.Events, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock

	listingRepo  ListingRepository
	purchaseRepo TicketPurchaseRepository
	rangeRepo    TicketRangeRepository
	outcomeRepo  RaffleOutcomeRepository
	auditRepo    AuditEventRepository
	eventBus     EventPublisher
}

// SetRepositories wires the repository mocks returned by the getters
func (m *MockUnitOfWork) SetRepositories(
	listingRepo ListingRepository,
	purchaseRepo TicketPurchaseRepository,
	rangeRepo TicketRangeRepository,
	outcomeRepo RaffleOutcomeRepository,
	auditRepo AuditEventRepository,
) {
	m.listingRepo = listingRepo
	m.purchaseRepo = purchaseRepo
	m.rangeRepo = rangeRepo
	m.outcomeRepo = outcomeRepo
	m.auditRepo = auditRepo
}

// SetEventBus wires the publisher returned by EventBus
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) ListingRepository() ListingRepository {
	return m.listingRepo
}

func (m *MockUnitOfWork) TicketPurchaseRepository() TicketPurchaseRepository {
	return m.purchaseRepo
}

func (m *MockUnitOfWork) TicketRangeRepository() TicketRangeRepository {
	return m.rangeRepo
}

func (m *MockUnitOfWork) RaffleOutcomeRepository() RaffleOutcomeRepository {
	return m.outcomeRepo
}

func (m *MockUnitOfWork) AuditEventRepository() AuditEventRepository {
	return m.auditRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &CapturingEventPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
