package domain

import "strings"

// ConditionStatus is the beneficiary condition recorded during a visit.
type ConditionStatus int

const (
	ConditionBedridden ConditionStatus = iota
	ConditionMobile
	ConditionDeceased
)

// DeceasedNotice is shown while a beneficiary is marked deceased.
const DeceasedNotice = "Marking as Deceased will suspend pension release pending death certificate verification."

// Conditions lists every selectable condition.
var Conditions = []ConditionStatus{ConditionBedridden, ConditionMobile, ConditionDeceased}

func (c ConditionStatus) String() string {
	switch c {
	case ConditionBedridden:
		return "Bedridden"
	case ConditionMobile:
		return "Mobile"
	case ConditionDeceased:
		return "Deceased"
	default:
		return "Unknown"
	}
}

// Label is the option text offered to the operator.
func (c ConditionStatus) Label() string {
	switch c {
	case ConditionBedridden:
		return "Still Bedridden"
	case ConditionMobile:
		return "Mobile/Recovered"
	case ConditionDeceased:
		return "Deceased"
	default:
		return ""
	}
}

// Valid reports whether c is one of the enumerated conditions.
func (c ConditionStatus) Valid() bool {
	return c >= ConditionBedridden && c <= ConditionDeceased
}

// ParseConditionStatus maps a condition name to its value.
// Matching is case-insensitive; anything else is ErrInvalidInput.
func ParseConditionStatus(value string) (ConditionStatus, error) {
	v := strings.TrimSpace(value)
	for _, c := range Conditions {
		if strings.EqualFold(v, c.String()) {
			return c, nil
		}
	}
	return 0, RejectInput("set condition", "unknown condition "+quote(value))
}

// BeneficiaryRecord is the person whose pension is being released.
type BeneficiaryRecord struct {
	Name      string
	IDNumber  string
	Category  string
	Condition ConditionStatus
}

func quote(s string) string {
	return `"` + s + `"`
}
