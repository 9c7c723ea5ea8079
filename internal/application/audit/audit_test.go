package audit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/constructora/backend/internal/domain/audit"
	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) CreateAuditLog(ctx context.Context, message string, details map[string]any, actor, eventType string) error {
	return m.Called(ctx, message, details, actor, eventType).Error(0)
}

func (m *MockSink) CreateNotification(ctx context.Context, t audit.NotificationType, message, link string) error {
	return m.Called(ctx, t, message, link).Error(0)
}

type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Create(ctx context.Context, l *audit.Log) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLogRepository) FindAll(ctx context.Context, filter audit.LogFilter) ([]audit.Log, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]audit.Log), args.Get(1).(int64), args.Error(2)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *audit.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindAll(ctx context.Context, filter audit.NotificationFilter) ([]audit.Notification, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]audit.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) Save(ctx context.Context, n *audit.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendNotification(ctx context.Context, n *audit.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func paymentEvent(eventType string) *ledger.PaymentEvent {
	p := &ledger.Payment{
		Sequence: 42,
		ClientID: uuid.New(),
		HouseID:  uuid.New(),
		Source:   client.SourceDownPayment,
		Amount:   decimal.NewFromInt(20_000_000),
		Method:   "Transferencia",
	}
	p.ID = uuid.New()
	e := ledger.NewPaymentEvent(eventType, p, "admin")
	e.ClientName = "ana maría ROJAS"
	e.HouseLabel = "Mz. A - Casa 1"
	e.ProjectName = "Villa Verde"
	e.HouseTotalPaid = decimal.NewFromInt(20_000_000)
	e.HouseBalance = decimal.NewFromInt(80_000_000)
	return e
}

func TestEventHandler_PaymentRegistered(t *testing.T) {
	ctx := context.Background()
	sink := new(MockSink)
	h := NewEventHandler(sink, zap.NewNop())
	e := paymentEvent(ledger.EventPaymentRegistered)

	var details map[string]any
	sink.On("CreateAuditLog", ctx, mock.MatchedBy(func(msg string) bool {
		return msg == "Abono #42 de "+valueobject.FormatCOP(e.Amount)+" (Cuota inicial) registrado para Ana María Rojas en Mz. A - Casa 1"
	}), mock.Anything, "admin", ledger.EventPaymentRegistered).
		Run(func(args mock.Arguments) { details = args.Get(2).(map[string]any) }).
		Return(nil).Once()
	sink.On("CreateNotification", ctx, audit.NotificationPayment, mock.AnythingOfType("string"), "/clientes/"+e.ClientID.String()).
		Return(nil).Once()

	require.NoError(t, h.Handle(ctx, e))
	sink.AssertExpectations(t)
	assert.Equal(t, int64(42), details["consecutivo"])
	assert.Equal(t, "Villa Verde", details["proyecto"])
	assert.Equal(t, "80000000", details["saldoPendiente"])
}

func TestEventHandler_DisbursementStepAndFullyPaid(t *testing.T) {
	ctx := context.Background()
	sink := new(MockSink)
	h := NewEventHandler(sink, zap.NewNop())

	e := paymentEvent(ledger.EventPaymentRegistered)
	e.Source = client.SourceHousingSubsidy
	e.Step = client.StepHousingSubsidyDisbursement
	sink.On("CreateAuditLog", ctx, mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "Paso \"Subsidio de vivienda desembolsado\" completado")
	}), mock.Anything, "admin", ledger.EventPaymentRegistered).Return(nil).Once()
	sink.On("CreateNotification", ctx, audit.NotificationDisbursement, mock.Anything, mock.Anything).Return(nil).Once()
	require.NoError(t, h.Handle(ctx, e))

	full := paymentEvent(ledger.EventPaymentRegistered)
	full.SourceFullyPaid = true
	sink.On("CreateAuditLog", ctx, mock.Anything, mock.Anything, "admin", ledger.EventPaymentRegistered).Return(nil).Once()
	sink.On("CreateNotification", ctx, audit.NotificationPayment, "Ana María Rojas completó la cuota inicial con el abono #42", mock.Anything).
		Return(nil).Once()
	require.NoError(t, h.Handle(ctx, full))
	sink.AssertExpectations(t)
}

func TestEventHandler_SinkFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	sink := new(MockSink)
	h := NewEventHandler(sink, zap.NewNop())
	e := paymentEvent(ledger.EventPaymentVoided)
	e.Reason = "Cheque devuelto"

	sink.On("CreateAuditLog", ctx, mock.Anything, mock.Anything, "admin", ledger.EventPaymentVoided).
		Return(errors.New("db down")).Once()
	sink.On("CreateNotification", ctx, audit.NotificationVoid, mock.Anything, mock.Anything).
		Return(errors.New("db down")).Once()

	assert.NoError(t, h.Handle(ctx, e), "sink failures never reach the caller")
	sink.AssertExpectations(t)
}

func TestEventHandler_StepEventsHaveNoNotification(t *testing.T) {
	ctx := context.Background()
	sink := new(MockSink)
	h := NewEventHandler(sink, zap.NewNop())

	c, err := client.NewClient(client.PersonalData{FirstName: "Luis", LastName: "Perdomo", DocumentNumber: "1"},
		uuid.New(), uuid.New(), client.Financing{DownPayment: client.SourceTerms{Applies: true, Amount: decimal.NewFromInt(1)}})
	require.NoError(t, err)

	sink.On("CreateAuditLog", ctx, "Paso \"Promesa enviada\" reabierto para Luis Perdomo. Motivo: error", mock.Anything, "admin", client.EventStepReopened).
		Return(nil).Once()
	require.NoError(t, h.Handle(ctx, client.NewStepReopenedEvent(c, client.StepPromiseSent, "error", "admin")))
	sink.AssertExpectations(t)
	sink.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEventHandler_BalanceMismatch(t *testing.T) {
	ctx := context.Background()
	sink := new(MockSink)
	h := NewEventHandler(sink, zap.NewNop())

	house, err := housing.NewHouse(uuid.New(), "A", "1", decimal.NewFromInt(100), decimal.Zero)
	require.NoError(t, err)
	sink.On("CreateAuditLog", ctx, mock.Anything, mock.Anything, mock.Anything, housing.EventBalanceMismatch).Return(nil).Once()
	sink.On("CreateNotification", ctx, audit.NotificationAlert, mock.Anything, "/viviendas/"+house.ID.String()).Return(nil).Once()

	require.NoError(t, h.Handle(ctx, housing.NewBalanceMismatchEvent(house, decimal.NewFromInt(5))))
	sink.AssertExpectations(t)
}

func TestEventHandler_IgnoresUnknownEvents(t *testing.T) {
	sink := new(MockSink)
	h := NewEventHandler(sink, zap.NewNop())
	ev := shared.NewBaseDomainEvent("Something", "Thing", uuid.New(), "x")

	require.NoError(t, h.Handle(context.Background(), &ev))
	sink.AssertNotCalled(t, "CreateAuditLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Contains(t, h.EventTypes(), ledger.EventBalanceCondoned)
}

func TestSinkService_CreateNotificationMailsBestEffort(t *testing.T) {
	ctx := context.Background()
	notifications := new(MockNotificationRepository)
	mailer := new(MockMailer)
	svc := NewSinkService(new(MockLogRepository), notifications, zap.NewNop()).WithMailer(mailer)

	notifications.On("Create", ctx, mock.AnythingOfType("*audit.Notification")).Return(nil).Once()
	mailer.On("SendNotification", ctx, mock.AnythingOfType("*audit.Notification")).Return(errors.New("smtp")).Once()
	require.NoError(t, svc.CreateNotification(ctx, audit.NotificationPayment, "Nuevo abono", "/clientes/1"))

	err := svc.CreateNotification(ctx, "sms", "x", "")
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidInput))
	notifications.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestSinkService_CreateAuditLog(t *testing.T) {
	ctx := context.Background()
	logs := new(MockLogRepository)
	svc := NewSinkService(logs, new(MockNotificationRepository), zap.NewNop())

	logs.On("Create", ctx, mock.MatchedBy(func(l *audit.Log) bool {
		return l.Message == "Abono #1 registrado" && l.Actor == "ana" && l.EventType == ledger.EventPaymentRegistered
	})).Return(nil).Once()
	require.NoError(t, svc.CreateAuditLog(ctx, "Abono #1 registrado", nil, "ana", ledger.EventPaymentRegistered))

	logs.On("Create", ctx, mock.Anything).Return(errors.New("boom")).Once()
	assert.Error(t, svc.CreateAuditLog(ctx, "x", nil, "ana", "y"))
	logs.AssertExpectations(t)
}

func TestSinkService_MarkNotificationRead(t *testing.T) {
	ctx := context.Background()
	notifications := new(MockNotificationRepository)
	svc := NewSinkService(new(MockLogRepository), notifications, zap.NewNop())

	n, err := audit.NewNotification(audit.NotificationAlert, "Saldo descuadrado", "")
	require.NoError(t, err)
	notifications.On("FindByID", ctx, n.ID).Return(n, nil)
	notifications.On("Save", ctx, n).Return(nil).Once()

	resp, err := svc.MarkNotificationRead(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, resp.Read)

	missing := uuid.New()
	notifications.On("FindByID", ctx, missing).Return(nil, nil)
	_, err = svc.MarkNotificationRead(ctx, missing)
	assert.True(t, shared.IsDomainError(err, shared.CodeNotFound))
}
