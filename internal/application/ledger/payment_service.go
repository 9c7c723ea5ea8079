package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/domain/shared/valueobject"
	"github.com/constructora/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger operations reported to MetricsRecorder
const (
	OperationRegistered      = "registered"
	OperationCreditDisbursed = "credit_disbursed"
	OperationUpdated         = "updated"
	OperationVoided          = "voided"
	OperationVoidReverted    = "void_reverted"
	OperationCondoned        = "condoned"
)

// timeNow dates condonations
var timeNow = time.Now

// MetricsRecorder receives one call per committed ledger write
type MetricsRecorder interface {
	RecordLedgerOperation(ctx context.Context, operation string, source client.FundingSource, amount decimal.Decimal)
}

// PaymentService implements the abono ledger
type PaymentService struct {
	scope     TransactionScope
	payments  ledger.PaymentRepository
	clients   client.ClientRepository
	projects  housing.ProjectRepository
	publisher shared.EventPublisher
	metrics   MetricsRecorder
}

// NewPaymentService creates a PaymentService. The repositories are used
// for reads outside transactions; writes go through scope.
func NewPaymentService(
	scope TransactionScope,
	payments ledger.PaymentRepository,
	clients client.ClientRepository,
	projects housing.ProjectRepository,
) *PaymentService {
	return &PaymentService{
		scope:    scope,
		payments: payments,
		clients:  clients,
		projects: projects,
	}
}

// SetEventPublisher sets the publisher for post-commit events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *PaymentService) SetMetrics(metrics MetricsRecorder) {
	s.metrics = metrics
}

// RegisterPayment books a payment against a funding source
func (s *PaymentService) RegisterPayment(ctx context.Context, req RegisterPaymentRequest) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "register_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrClientID, req.ClientID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrFundingSource, string(req.Source),
	)

	paidOn, err := ParseDate(req.PaidOn)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	in := ledger.PaymentInput{
		ClientID:   req.ClientID,
		HouseID:    req.HouseID,
		Source:     req.Source,
		Amount:     req.Amount,
		PaidOn:     paidOn,
		Method:     req.Method,
		Notes:      req.Notes,
		ReceiptURL: req.ReceiptURL,
		Actor:      req.Actor,
	}
	if err := in.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Advisory only: never gates the write.
	fullyPaid := false
	if req.Source == client.SourceDownPayment {
		fullyPaid = s.wouldCompleteSource(ctx, req.ClientID, req.Source, req.Amount)
	}

	var (
		p   *ledger.Payment
		res *PaymentResult
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, h, err := lockForWrite(ctx, repos, in.ClientID, in.HouseID)
		if err != nil {
			return err
		}
		if err := c.EnsureRequestStepCompleted(in.Source); err != nil {
			return err
		}
		if err := ledger.NewCeilingChecker(repos.Payments()).Check(ctx, c, in.Source, in.Amount, uuid.Nil); err != nil {
			return err
		}
		p, res, err = book(ctx, repos, c, h, in)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	res.SourceFullyPaid = fullyPaid
	telemetry.SetAttribute(span, telemetry.SpanAttrSequence, p.Sequence)

	s.afterCommit(ctx, OperationRegistered, ledger.EventPaymentRegistered, p, res, req.Actor)
	return res, nil
}

// RegisterCreditDisbursement books the whole outstanding credit in one payment
func (s *PaymentService) RegisterCreditDisbursement(ctx context.Context, req CreditDisbursementRequest) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "register_credit_disbursement")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrClientID, req.ClientID.String())

	paidOn, err := ParseDate(req.PaidOn)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		p   *ledger.Payment
		res *PaymentResult
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, h, err := lockForWrite(ctx, repos, req.ClientID, req.HouseID)
		if err != nil {
			return err
		}
		if err := c.EnsureRequestStepCompleted(client.SourceCredit); err != nil {
			return err
		}
		outstanding, err := ledger.NewCeilingChecker(repos.Payments()).Outstanding(ctx, c, client.SourceCredit)
		if err != nil {
			return err
		}
		if !outstanding.IsPositive() {
			return shared.NewDomainError(ledger.CodeAlreadyDisbursed,
				fmt.Sprintf("the credit of %s is already disbursed", c.DisplayName()))
		}
		in := ledger.PaymentInput{
			ClientID:   c.ID,
			HouseID:    h.ID,
			Source:     client.SourceCredit,
			Amount:     outstanding,
			PaidOn:     paidOn,
			Method:     req.Method,
			Notes:      req.Notes,
			ReceiptURL: req.ReceiptURL,
			Actor:      req.Actor,
		}
		p, res, err = book(ctx, repos, c, h, in)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	res.SourceFullyPaid = true

	s.afterCommit(ctx, OperationCreditDisbursed, ledger.EventCreditDisbursed, p, res, req.Actor)
	return res, nil
}

// lockForWrite locks the client and house of a new payment and checks that
// they can take it
func lockForWrite(ctx context.Context, repos TransactionalRepositories, clientID, houseID uuid.UUID) (*client.Client, *housing.House, error) {
	c, err := LockClient(ctx, repos, clientID)
	if err != nil {
		return nil, nil, err
	}
	if err := c.EnsureCanReceivePayments(); err != nil {
		return nil, nil, err
	}
	h, err := LockHouse(ctx, repos, houseID)
	if err != nil {
		return nil, nil, err
	}
	if !h.BelongsTo(c.ID) {
		return nil, nil, shared.NewDomainError(ledger.CodeHouseMismatch,
			fmt.Sprintf("house %s is not assigned to %s", h.Label(), c.DisplayName()))
	}
	return c, h, nil
}

// book numbers and stores a validated payment, updates the house totals and
// completes the disbursement step of the source
func book(ctx context.Context, repos TransactionalRepositories, c *client.Client, h *housing.House, in ledger.PaymentInput) (*ledger.Payment, *PaymentResult, error) {
	seq, err := repos.Sequences().NextSequence(ctx, ledger.PaymentSequence)
	if err != nil {
		return nil, nil, err
	}
	in.ProjectID = h.ProjectID
	p, err := ledger.NewPayment(seq, in)
	if err != nil {
		return nil, nil, err
	}
	if err := h.ApplyPayment(p.Amount); err != nil {
		return nil, nil, err
	}
	step, completed := c.CompleteDisbursementStep(p.Source, p.PaidOn, p.ReceiptURL,
		fmt.Sprintf("Desembolso registrado con el abono #%d", p.Sequence), in.Actor)

	if err := repos.Payments().Save(ctx, p); err != nil {
		return nil, nil, fmt.Errorf("failed to save payment: %w", err)
	}
	if err := repos.Houses().SaveWithLock(ctx, h); err != nil {
		return nil, nil, err
	}
	if completed {
		if err := repos.Clients().SaveWithLock(ctx, c); err != nil {
			return nil, nil, err
		}
	}
	res := newPaymentResult(p, c, h)
	if completed {
		res.Step = step
		res.StepLabel = step.Label()
	}
	return p, res, nil
}

// UpdatePayment edits an active payment. Process steps are not touched.
func (s *PaymentService) UpdatePayment(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "update_payment")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, id.String())

	paidOn, err := ParseDate(req.PaidOn)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	amount := valueobject.RoundAmount(req.Amount)

	var (
		p   *ledger.Payment
		res *PaymentResult
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if p, err = loadPayment(ctx, repos, id); err != nil {
			return err
		}
		c, err := LockClient(ctx, repos, p.ClientID)
		if err != nil {
			return err
		}
		if !p.IsActive() {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("payment #%d is voided and cannot be edited", p.Sequence))
		}
		if amount.IsPositive() {
			if err := ledger.NewCeilingChecker(repos.Payments()).Check(ctx, c, p.Source, amount, p.ID); err != nil {
				return err
			}
		}
		previous := p.Amount
		delta, err := p.Edit(ledger.PaymentEdit{
			Amount:     amount,
			PaidOn:     paidOn,
			Method:     req.Method,
			Notes:      req.Notes,
			ReceiptURL: req.ReceiptURL,
		})
		if err != nil {
			return err
		}
		h, err := LockHouse(ctx, repos, p.HouseID)
		if err != nil {
			return err
		}
		if err := h.AdjustPayment(delta); err != nil {
			return err
		}
		if err := repos.Payments().SaveWithLock(ctx, p); err != nil {
			return err
		}
		if err := repos.Houses().SaveWithLock(ctx, h); err != nil {
			return err
		}
		res = newPaymentResult(p, c, h)
		res.PreviousAmount = previous
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterCommit(ctx, OperationUpdated, ledger.EventPaymentUpdated, p, res, req.Actor)
	return res, nil
}

// VoidPayment flips an active payment to anulado and unwinds its effects
func (s *PaymentService) VoidPayment(ctx context.Context, id uuid.UUID, req VoidPaymentRequest) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "void_payment")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, id.String())

	if strings.TrimSpace(req.Reason) == "" {
		err := shared.NewDomainError(shared.CodeInvalidInput, "a reason is required to void a payment")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		p   *ledger.Payment
		res *PaymentResult
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if p, err = loadPayment(ctx, repos, id); err != nil {
			return err
		}
		c, err := LockClient(ctx, repos, p.ClientID)
		if err != nil {
			return err
		}
		if !p.IsActive() {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("payment #%d is already voided", p.Sequence))
		}
		if c.IsProcessClosed() {
			return shared.NewDomainError(client.CodeProcessClosed,
				fmt.Sprintf("the sale of %s is invoiced; payments can no longer be voided", c.DisplayName()))
		}
		h, err := LockHouse(ctx, repos, p.HouseID)
		if err != nil {
			return err
		}
		step, reopened, err := voidPayment(ctx, repos, p, c, h, req.Reason, req.Actor)
		if err != nil {
			return err
		}
		if err := repos.Houses().SaveWithLock(ctx, h); err != nil {
			return err
		}
		if reopened {
			if err := repos.Clients().SaveWithLock(ctx, c); err != nil {
				return err
			}
		}
		res = newPaymentResult(p, c, h)
		if reopened {
			res.Step = step
			res.StepLabel = step.Label()
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterCommit(ctx, OperationVoided, ledger.EventPaymentVoided, p, res, req.Actor)
	return res, nil
}

// VoidPaymentInTx voids p within an open transaction and subtracts it from
// h. The disbursement step is reopened only when no other active payment of
// the source remains. The caller saves h and, when reopened is true, c.
func VoidPaymentInTx(ctx context.Context, repos TransactionalRepositories, p *ledger.Payment, c *client.Client, h *housing.House, reason, actor string) (client.StepKey, bool, error) {
	return voidPayment(ctx, repos, p, c, h, reason, actor)
}

func voidPayment(ctx context.Context, repos TransactionalRepositories, p *ledger.Payment, c *client.Client, h *housing.House, reason, actor string) (client.StepKey, bool, error) {
	if err := p.Void(reason, actor); err != nil {
		return "", false, err
	}
	if err := h.RevertPayment(p.Amount); err != nil {
		return "", false, err
	}
	if err := repos.Payments().SaveWithLock(ctx, p); err != nil {
		return "", false, err
	}
	if p.IsCondonation {
		return "", false, nil
	}
	if _, ok := client.DisbursementStepsFor(p.Source); !ok {
		return "", false, nil
	}
	remaining, err := repos.Payments().CountActive(ctx, c.ID, p.Source, p.ID)
	if err != nil {
		return "", false, fmt.Errorf("failed to count active payments: %w", err)
	}
	if remaining > 0 {
		return "", false, nil
	}
	step, reopened := c.ReopenDisbursementStep(p.Source,
		fmt.Sprintf("Abono #%d anulado: %s", p.Sequence, p.VoidReason), actor)
	return step, reopened, nil
}

// RevertVoid restores a voided payment
func (s *PaymentService) RevertVoid(ctx context.Context, id uuid.UUID, actor string) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "revert_void")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, id.String())

	var (
		p   *ledger.Payment
		res *PaymentResult
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if p, err = loadPayment(ctx, repos, id); err != nil {
			return err
		}
		c, err := LockClient(ctx, repos, p.ClientID)
		if err != nil {
			return err
		}
		if p.IsActive() {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("payment #%d is not voided", p.Sequence))
		}
		if err := c.EnsureCanReceivePayments(); err != nil {
			return err
		}
		if err := ledger.NewCeilingChecker(repos.Payments()).Check(ctx, c, p.Source, p.Amount, p.ID); err != nil {
			return err
		}
		if p.Source.IsSingularDisbursement() && !p.IsCondonation {
			others, err := repos.Payments().CountActive(ctx, c.ID, p.Source, p.ID)
			if err != nil {
				return fmt.Errorf("failed to count active payments: %w", err)
			}
			if others > 0 {
				return shared.NewDomainError(ledger.CodeDuplicateDisbursement,
					fmt.Sprintf("%s already has an active disbursement", p.Source.Label()))
			}
		}
		h, err := LockHouse(ctx, repos, p.HouseID)
		if err != nil {
			return err
		}
		if !h.BelongsTo(c.ID) {
			return shared.NewDomainError(ledger.CodeHouseMismatch,
				fmt.Sprintf("house %s is no longer assigned to %s", h.Label(), c.DisplayName()))
		}
		if err := p.RestoreVoid(); err != nil {
			return err
		}
		if err := h.ApplyPayment(p.Amount); err != nil {
			return err
		}
		var (
			step      client.StepKey
			completed bool
		)
		if !p.IsCondonation {
			step, completed = c.CompleteDisbursementStep(p.Source, p.PaidOn, p.ReceiptURL,
				fmt.Sprintf("Abono #%d restaurado", p.Sequence), actor)
		}
		if err := repos.Payments().SaveWithLock(ctx, p); err != nil {
			return err
		}
		if err := repos.Houses().SaveWithLock(ctx, h); err != nil {
			return err
		}
		if completed {
			if err := repos.Clients().SaveWithLock(ctx, c); err != nil {
				return err
			}
		}
		res = newPaymentResult(p, c, h)
		if completed {
			res.Step = step
			res.StepLabel = step.Label()
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterCommit(ctx, OperationVoidReverted, ledger.EventPaymentVoidReverted, p, res, actor)
	return res, nil
}

// CondoneBalance forgives part of a house balance with a condonation payment
func (s *PaymentService) CondoneBalance(ctx context.Context, req CondonationRequest) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "condone_balance")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrClientID, req.ClientID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if strings.TrimSpace(req.Reason) == "" {
		err := shared.NewDomainError(shared.CodeInvalidInput, "a reason is required to condone a balance")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		p   *ledger.Payment
		res *PaymentResult
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, h, err := lockForWrite(ctx, repos, req.ClientID, req.HouseID)
		if err != nil {
			return err
		}
		amount := valueobject.RoundAmount(req.Amount)
		if amount.GreaterThan(h.Balance) {
			return shared.NewDomainError(housing.CodeBalanceExceeded,
				fmt.Sprintf("condonation of %s exceeds the pending balance of %s (%s)",
					valueobject.FormatCOP(amount), h.Label(), valueobject.FormatCOP(h.Balance)))
		}
		if amount.IsPositive() {
			if err := ledger.NewCeilingChecker(repos.Payments()).Check(ctx, c, req.Source, amount, uuid.Nil); err != nil {
				return err
			}
		}
		seq, err := repos.Sequences().NextSequence(ctx, ledger.PaymentSequence)
		if err != nil {
			return err
		}
		p, err = ledger.NewCondonation(seq, ledger.PaymentInput{
			ClientID:   c.ID,
			HouseID:    h.ID,
			ProjectID:  h.ProjectID,
			Source:     req.Source,
			Amount:     amount,
			PaidOn:     timeNow(),
			Notes:      req.Reason,
			ReceiptURL: req.SupportURL,
			Actor:      req.Actor,
		}, req.OriginalSource)
		if err != nil {
			return err
		}
		if err := h.ApplyPayment(p.Amount); err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, p); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if err := repos.Houses().SaveWithLock(ctx, h); err != nil {
			return err
		}
		res = newPaymentResult(p, c, h)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterCommit(ctx, OperationCondoned, ledger.EventBalanceCondoned, p, res, req.Actor)
	return res, nil
}

// GetPayment returns one payment
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "payment not found")
	}
	resp := ToPaymentResponse(p)
	return &resp, nil
}

// ListPayments lists payments by client or house
func (s *PaymentService) ListPayments(ctx context.Context, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	f := ledger.PaymentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "consecutivo",
			OrderDir: filter.OrderDir,
		}.Normalize(),
		ClientID:      filter.ClientID,
		HouseID:       filter.HouseID,
		Source:        client.FundingSource(filter.Source),
		IncludeVoided: filter.IncludeVoided,
	}
	payments, total, err := s.payments.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out, total, nil
}

// ClientSummary returns agreed, paid and outstanding amounts per source
func (s *PaymentService) ClientSummary(ctx context.Context, clientID uuid.UUID) (*ClientLedgerSummary, error) {
	c, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "client not found")
	}
	totals, err := s.payments.SumActiveBySource(ctx, clientID)
	if err != nil {
		return nil, err
	}
	paid := make(map[client.FundingSource]decimal.Decimal, len(totals))
	for _, t := range totals {
		paid[t.Source] = t.Total
	}

	summary := &ClientLedgerSummary{
		ClientID:   c.ID,
		ClientName: c.DisplayName(),
		Sources:    make([]SourceSummary, 0, len(client.AllFundingSources())),
	}
	for _, source := range client.AllFundingSources() {
		agreed := c.Financing.Agreed(source)
		sourcePaid := paid[source]
		summary.Sources = append(summary.Sources, SourceSummary{
			Source:      source,
			Label:       source.Label(),
			Applies:     c.Financing.Applies(source),
			Agreed:      agreed,
			Paid:        sourcePaid,
			Outstanding: agreed.Sub(sourcePaid),
		})
		summary.TotalAgreed = summary.TotalAgreed.Add(agreed)
		summary.TotalPaid = summary.TotalPaid.Add(sourcePaid)
	}
	summary.TotalOutstanding = summary.TotalAgreed.Sub(summary.TotalPaid)
	return summary, nil
}

// wouldCompleteSource reads outside the transaction and may be stale
func (s *PaymentService) wouldCompleteSource(ctx context.Context, clientID uuid.UUID, source client.FundingSource, amount decimal.Decimal) bool {
	c, err := s.clients.FindByID(ctx, clientID)
	if err != nil || c == nil {
		return false
	}
	agreed := c.Financing.Agreed(source)
	if !agreed.IsPositive() {
		return false
	}
	paid, err := s.payments.SumActive(ctx, clientID, source, uuid.Nil)
	if err != nil {
		return false
	}
	return valueobject.RoundAmount(paid.Add(amount)).GreaterThanOrEqual(agreed)
}

func newPaymentResult(p *ledger.Payment, c *client.Client, h *housing.House) *PaymentResult {
	return &PaymentResult{
		Payment:        ToPaymentResponse(p),
		ClientName:     c.DisplayName(),
		HouseLabel:     h.Label(),
		AmountText:     valueobject.FormatCOP(p.Amount),
		HouseTotalPaid: h.TotalPaid,
		HouseBalance:   h.Balance,
	}
}

// afterCommit resolves display data, records metrics and publishes the event
func (s *PaymentService) afterCommit(ctx context.Context, operation, eventType string, p *ledger.Payment, res *PaymentResult, actor string) {
	if s.projects != nil {
		if project, err := s.projects.FindByID(ctx, p.ProjectID); err == nil && project != nil {
			res.ProjectName = project.Name
		}
	}
	if s.metrics != nil {
		s.metrics.RecordLedgerOperation(ctx, operation, p.Source, p.Amount)
	}
	if s.publisher == nil {
		return
	}
	event := ledger.NewPaymentEvent(eventType, p, actor)
	event.PreviousAmount = res.PreviousAmount
	event.ClientName = res.ClientName
	event.HouseLabel = res.HouseLabel
	event.ProjectName = res.ProjectName
	event.HouseTotalPaid = res.HouseTotalPaid
	event.HouseBalance = res.HouseBalance
	event.Step = res.Step
	event.SourceFullyPaid = res.SourceFullyPaid
	// Handler errors are logged by the bus
	_ = s.publisher.Publish(ctx, event)
}
