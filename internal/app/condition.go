package app

import "github.com/bft-labs/pencen/internal/domain"

// conditionSelector is the only writer of the beneficiary's condition.
type conditionSelector struct {
	record *domain.BeneficiaryRecord
}

func (s *conditionSelector) status() domain.ConditionStatus {
	return s.record.Condition
}

// set records a new condition. Reports whether the value changed.
func (s *conditionSelector) set(c domain.ConditionStatus) (bool, error) {
	if !c.Valid() {
		return false, domain.RejectInput("set condition", "unknown condition "+c.String())
	}
	if s.record.Condition == c {
		return false, nil
	}
	s.record.Condition = c
	return true, nil
}
