package housing

import (
	"fmt"
	"strings"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error codes raised by house rules
const (
	CodeHouseInUse      = "HOUSE_IN_USE"
	CodeHouseAssigned   = "HOUSE_ASSIGNED"
	CodeBalanceExceeded = "BALANCE_EXCEEDED"
	CodeProjectInUse    = "PROJECT_IN_USE"
	CodeDuplicateHouse  = "DUPLICATE_HOUSE"
)

// House is a sellable unit ("vivienda"). Balance always equals
// FinalPrice minus TotalPaid, and TotalPaid is the sum of active payments.
type House struct {
	shared.BaseAggregateRoot
	ProjectID  uuid.UUID
	Block      string
	Number     string
	BasePrice  decimal.Decimal
	Discount   decimal.Decimal
	FinalPrice decimal.Decimal
	TotalPaid  decimal.Decimal
	Balance    decimal.Decimal
	ClientID   *uuid.UUID
}

// NewHouse creates an unassigned house
func NewHouse(projectID uuid.UUID, block, number string, basePrice, discount decimal.Decimal) (*House, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "project is required")
	}
	block = strings.TrimSpace(block)
	number = strings.TrimSpace(number)
	if block == "" || number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "block and house number are required")
	}
	h := &House{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         projectID,
		Block:             block,
		Number:            number,
		TotalPaid:         decimal.Zero,
	}
	if err := h.setPrice(basePrice, discount); err != nil {
		return nil, err
	}
	return h, nil
}

// Label returns the display string "Mz. A - Casa 12"
func (h *House) Label() string {
	return fmt.Sprintf("Mz. %s - Casa %s", h.Block, h.Number)
}

func (h *House) setPrice(basePrice, discount decimal.Decimal) error {
	basePrice = basePrice.Round(valueobject.AmountPlaces)
	discount = discount.Round(valueobject.AmountPlaces)
	if basePrice.IsNegative() || discount.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "price and discount cannot be negative")
	}
	final := basePrice.Sub(discount)
	if final.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "discount cannot exceed the base price")
	}
	if final.LessThan(h.TotalPaid) {
		return shared.NewDomainError(CodeBalanceExceeded,
			fmt.Sprintf("final price %s is below the amount already paid %s",
				valueobject.FormatCOP(final), valueobject.FormatCOP(h.TotalPaid)))
	}
	h.BasePrice = basePrice
	h.Discount = discount
	h.FinalPrice = final
	h.recompute()
	return nil
}

// UpdatePrice changes base price and discount and recomputes the balance
func (h *House) UpdatePrice(basePrice, discount decimal.Decimal) error {
	if err := h.setPrice(basePrice, discount); err != nil {
		return err
	}
	h.Touch()
	return nil
}

func (h *House) recompute() {
	h.Balance = h.FinalPrice.Sub(h.TotalPaid)
}

// ApplyPayment adds amount to the running totals
func (h *House) ApplyPayment(amount decimal.Decimal) error {
	return h.adjust(amount)
}

// RevertPayment removes amount from the running totals
func (h *House) RevertPayment(amount decimal.Decimal) error {
	return h.adjust(amount.Neg())
}

// AdjustPayment applies the difference of an edited payment
func (h *House) AdjustPayment(delta decimal.Decimal) error {
	return h.adjust(delta)
}

func (h *House) adjust(delta decimal.Decimal) error {
	total := h.TotalPaid.Add(delta)
	if total.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("house %s would end with a negative paid total", h.Label()))
	}
	if total.GreaterThan(h.FinalPrice) {
		return shared.NewDomainError(CodeBalanceExceeded,
			fmt.Sprintf("payment exceeds the pending balance of %s (%s)", h.Label(), valueobject.FormatCOP(h.Balance)))
	}
	h.TotalPaid = total
	h.recompute()
	h.Touch()
	return nil
}

// IsAssigned reports whether a client holds the house
func (h *House) IsAssigned() bool {
	return h.ClientID != nil
}

// BelongsTo reports whether the house is assigned to clientID
func (h *House) BelongsTo(clientID uuid.UUID) bool {
	return h.ClientID != nil && *h.ClientID == clientID
}

// AssignClient binds the house to a client
func (h *House) AssignClient(clientID uuid.UUID) error {
	if h.IsAssigned() {
		return shared.NewDomainError(CodeHouseAssigned, fmt.Sprintf("house %s is already assigned", h.Label()))
	}
	h.ClientID = &clientID
	h.Touch()
	return nil
}

// Release unbinds the client
func (h *House) Release() {
	h.ClientID = nil
	h.Touch()
}

// EnsureDeletable allows deletion only of unassigned houses with no payments
func (h *House) EnsureDeletable(paymentCount int64) error {
	if h.IsAssigned() || paymentCount > 0 {
		return shared.NewDomainError(CodeHouseInUse,
			fmt.Sprintf("house %s has a client or payments and cannot be deleted", h.Label()))
	}
	return nil
}
