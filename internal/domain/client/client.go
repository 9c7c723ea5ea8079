package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PersonalData holds the client's contact details
type PersonalData struct {
	FirstName      string `json:"nombres"`
	LastName       string `json:"apellidos"`
	DocumentNumber string `json:"cedula"`
	Phone          string `json:"telefono"`
	Email          string `json:"correo"`
	Address        string `json:"direccion"`
}

// Validate checks required personal fields
func (p PersonalData) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "client first and last name are required")
	}
	if strings.TrimSpace(p.DocumentNumber) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "client document number is required")
	}
	return nil
}

// Client is the buyer of a house and owner of a financial process
type Client struct {
	shared.BaseAggregateRoot
	PersonalData
	ProjectID             uuid.UUID
	HouseID               *uuid.UUID
	Financing             Financing
	Process               Process
	Status                Status
	PendingRenunciationID *uuid.UUID
}

// NewClient onboards a client for a house with an empty process derived
// from the financing.
func NewClient(data PersonalData, projectID, houseID uuid.UUID, financing Financing) (*Client, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if projectID == uuid.Nil || houseID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "project and house are required")
	}
	financing = financing.Normalized()
	if err := financing.Validate(); err != nil {
		return nil, err
	}
	data.FirstName = strings.TrimSpace(data.FirstName)
	data.LastName = strings.TrimSpace(data.LastName)
	data.DocumentNumber = strings.TrimSpace(data.DocumentNumber)

	c := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PersonalData:      data,
		ProjectID:         projectID,
		HouseID:           &houseID,
		Financing:         financing,
		Process:           NewProcess(financing),
		Status:            StatusActive,
	}
	return c, nil
}

// DisplayName returns "first last"
func (c *Client) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// UpdatePersonalData replaces contact details
func (c *Client) UpdatePersonalData(data PersonalData) error {
	if err := data.Validate(); err != nil {
		return err
	}
	c.PersonalData = data
	c.Touch()
	return nil
}

// EnsureCanReceivePayments rejects retired clients and clients with a pending renunciation
func (c *Client) EnsureCanReceivePayments() error {
	if c.Status != StatusActive {
		return shared.NewDomainError(CodeClientInactive,
			fmt.Sprintf("client %s is %s and cannot receive payments", c.DisplayName(), c.Status))
	}
	if c.PendingRenunciationID != nil {
		return shared.NewDomainError(CodeRenunciationPending,
			fmt.Sprintf("client %s has a pending renunciation", c.DisplayName()))
	}
	return nil
}

// IsProcessClosed reports whether the terminal step is completed
func (c *Client) IsProcessClosed() bool {
	return c.Process.IsCompleted(StepSalesInvoice)
}

// EnsureRequestStepCompleted checks the "solicitud" prerequisite of a source
func (c *Client) EnsureRequestStepCompleted(source FundingSource) error {
	m, ok := DisbursementStepsFor(source)
	if !ok {
		return nil
	}
	if !c.Process.IsCompleted(m.RequestStep) {
		return shared.NewDomainError(CodeRequestPending,
			fmt.Sprintf("step %q must be completed before registering a %s payment", m.RequestStep.Label(), source.Label()))
	}
	return nil
}

// CompleteDisbursementStep marks the disbursement step of source as done and
// attaches the receipt. Returns the step key, or false when source drives no step.
func (c *Client) CompleteDisbursementStep(source FundingSource, paidOn time.Time, receiptURL, message, user string) (StepKey, bool) {
	m, ok := DisbursementStepsFor(source)
	if !ok {
		return "", false
	}
	if c.Process == nil {
		c.Process = make(Process)
	}
	step := c.Process.ensure(m.DisbursementStep)
	if receiptURL != "" {
		step.attach(m.EvidenceSlot, receiptURL)
	}
	step.complete(paidOn, message, user)
	c.Touch()
	return m.DisbursementStep, true
}

// ReopenDisbursementStep reopens the disbursement step of source
func (c *Client) ReopenDisbursementStep(source FundingSource, message, user string) (StepKey, bool) {
	m, ok := DisbursementStepsFor(source)
	if !ok {
		return "", false
	}
	step, present := c.Process.Step(m.DisbursementStep)
	if !present {
		return "", false
	}
	step.reopen(message, user)
	c.Touch()
	return m.DisbursementStep, true
}

// CompleteStep completes a document step by hand. evidence maps slot id to URL
// and must cover every slot of the step.
func (c *Client) CompleteStep(key StepKey, date time.Time, evidence map[string]string, user string) error {
	def, ok := LookupStep(key)
	if !ok {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("unknown process step %q", key))
	}
	if c.Status != StatusActive {
		return shared.NewDomainError(CodeClientInactive, "process of a retired client cannot change")
	}
	if c.PendingRenunciationID != nil {
		return shared.NewDomainError(CodeRenunciationPending,
			fmt.Sprintf("client %s has a pending renunciation", c.DisplayName()))
	}
	if !def.AppliesTo(c.Financing) {
		return shared.NewDomainError(CodeStepNotApplicable, fmt.Sprintf("step %q does not apply to this client", def.Label))
	}
	if def.PaymentDriven {
		return shared.NewDomainError(CodePaymentDrivenStep,
			fmt.Sprintf("step %q completes when its disbursement is registered", def.Label))
	}
	if c.Process.IsCompleted(key) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("step %q is already completed", def.Label))
	}
	if missing := c.firstPendingPrerequisite(def); missing != "" {
		return shared.NewDomainError(CodeStepOrder,
			fmt.Sprintf("step %q must be completed first", missing.Label()))
	}
	for _, slot := range def.Evidence {
		if strings.TrimSpace(evidence[slot.ID]) == "" {
			return shared.NewDomainError(CodeMissingEvidence, fmt.Sprintf("evidence %q is required", slot.Label))
		}
	}
	if c.Process == nil {
		c.Process = make(Process)
	}
	step := c.Process.ensure(key)
	for _, slot := range def.Evidence {
		step.attach(slot.ID, strings.TrimSpace(evidence[slot.ID]))
	}
	step.complete(date, "Paso completado", user)
	c.Touch()
	return nil
}

// firstPendingPrerequisite returns the first earlier applicable step that
// blocks def. Disbursement tracks are independent of each other; only the
// terminal step waits for them.
func (c *Client) firstPendingPrerequisite(def StepDefinition) StepKey {
	for _, prev := range processDefinition[:stepIndex[def.Key]] {
		if !prev.AppliesTo(c.Financing) {
			continue
		}
		if prev.Track != "" && !def.Terminal && prev.Track != def.Track {
			continue
		}
		if !c.Process.IsCompleted(prev.Key) {
			return prev.Key
		}
	}
	return ""
}

// ReopenStep marks a step as pending again. hasActiveDisbursement tells
// whether an active payment still backs a payment-driven step.
func (c *Client) ReopenStep(key StepKey, reason, user string, hasActiveDisbursement bool) error {
	def, ok := LookupStep(key)
	if !ok {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("unknown process step %q", key))
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "a reason is required to reopen a step")
	}
	if c.Status != StatusActive {
		return shared.NewDomainError(CodeClientInactive, "process of a retired client cannot change")
	}
	step, present := c.Process.Step(key)
	if !present || !step.Completed {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("step %q is not completed", def.Label))
	}
	if c.IsProcessClosed() && key != StepSalesInvoice {
		return shared.NewDomainError(CodeProcessClosed, "the process is closed; reopen the sales invoice first")
	}
	if def.PaymentDriven && hasActiveDisbursement {
		return shared.NewDomainError(CodeActiveDisbursement,
			fmt.Sprintf("step %q is backed by an active disbursement; void it instead", def.Label))
	}
	if def.Track != "" && !def.PaymentDriven {
		if m, ok := DisbursementStepsFor(def.Track); ok && c.Process.IsCompleted(m.DisbursementStep) {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("step %q is already disbursed", m.DisbursementStep.Label()))
		}
	}
	step.reopen("Paso reabierto: "+strings.TrimSpace(reason), user)
	c.Touch()
	return nil
}

// ChangeFinancing replaces the agreement and syncs the process map
func (c *Client) ChangeFinancing(f Financing) (added, removed []StepKey, err error) {
	f = f.Normalized()
	if err := f.Validate(); err != nil {
		return nil, nil, err
	}
	if c.Process == nil {
		c.Process = make(Process)
	}
	c.Financing = f
	added, removed = c.Process.Sync(f)
	c.Touch()
	return added, removed, nil
}

// StartRenunciation flags a pending renunciation
func (c *Client) StartRenunciation(renunciationID uuid.UUID) error {
	if c.Status != StatusActive {
		return shared.NewDomainError(CodeClientInactive, "only active clients can renounce")
	}
	if c.PendingRenunciationID != nil {
		return shared.NewDomainError(CodeRenunciationPending, "the client already has a pending renunciation")
	}
	if c.IsProcessClosed() {
		return shared.NewDomainError(CodeProcessClosed, "a closed sale cannot be renounced")
	}
	c.PendingRenunciationID = &renunciationID
	c.Touch()
	return nil
}

// CompleteRenunciation retires the client and releases the house
func (c *Client) CompleteRenunciation() {
	c.Status = StatusRenounced
	c.PendingRenunciationID = nil
	c.HouseID = nil
	c.Touch()
}
