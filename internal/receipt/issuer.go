// Package receipt issues transaction receipts for released disbursements.
package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/bft-labs/pencen/internal/domain"
)

// DefaultAmount is the monthly disbursement: RM 1,250.00.
var DefaultAmount = domain.Money{MinorUnits: 125000, Currency: "MYR"}

// Clock returns the current time.
type Clock func() time.Time

// IDSource returns a fresh random identifier.
type IDSource func() uuid.UUID

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock sets the receipt timestamp source.
func WithClock(clock Clock) Option {
	return func(i *Issuer) {
		if clock != nil {
			i.clock = clock
		}
	}
}

// WithIDSource sets the identifier source behind transaction ids.
func WithIDSource(src IDSource) Option {
	return func(i *Issuer) {
		if src != nil {
			i.ids = src
		}
	}
}

// WithAmount sets the disbursed amount.
func WithAmount(m domain.Money) Option {
	return func(i *Issuer) {
		i.amount = m
	}
}

// Issuer stamps receipts with a transaction id, the current time and a
// fixed disbursement amount.
type Issuer struct {
	clock  Clock
	ids    IDSource
	amount domain.Money
}

// NewIssuer creates an Issuer paying DefaultAmount.
func NewIssuer(opts ...Option) *Issuer {
	i := &Issuer{
		clock:  time.Now,
		ids:    uuid.New,
		amount: DefaultAmount,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// Issue implements ports.ReceiptIssuer.
func (i *Issuer) Issue(agentID string, b domain.BeneficiaryRecord) (domain.TransactionReceipt, error) {
	if b.Name == "" || b.IDNumber == "" {
		return domain.TransactionReceipt{}, fmt.Errorf("%w: no beneficiary on record", domain.ErrInvalidInput)
	}
	return domain.TransactionReceipt{
		TransactionID:   TransactionID(i.ids()),
		AgentID:         agentID,
		BeneficiaryName: b.Name,
		BeneficiaryID:   b.IDNumber,
		Timestamp:       i.clock(),
		Amount:          i.amount,
	}, nil
}

// TransactionID renders id as TXN-XXXX-XXX.
func TransactionID(id uuid.UUID) string {
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return "TXN-" + hex[:4] + "-" + hex[4:7]
}

// FormatAmount renders m for display in the given locale, e.g. "RM 1,250.00".
// Unknown currency codes fall back to the code itself.
func FormatAmount(m domain.Money, tag language.Tag) string {
	p := message.NewPrinter(tag)

	symbol := m.Currency
	scale := 2
	if unit, err := currency.ParseISO(m.Currency); err == nil {
		symbol = p.Sprint(currency.NarrowSymbol(unit))
		scale, _ = currency.Standard.Rounding(unit)
	}

	value := float64(m.MinorUnits)
	for i := 0; i < scale; i++ {
		value /= 10
	}
	return symbol + " " + p.Sprint(number.Decimal(value, number.Scale(scale)))
}
