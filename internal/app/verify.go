package app

import "github.com/bft-labs/pencen/internal/domain"

// visit is the Verify stage composite. It is rebuilt on every Verify entry,
// so a new beneficiary always starts from an idle location check and an
// idle capture.
type visit struct {
	location  *locationFlow
	condition *conditionSelector
	capture   *captureFlow
}

func newVisit(record *domain.BeneficiaryRecord, publish func(event), onVerified func()) *visit {
	return &visit{
		location:  &locationFlow{publish: publish},
		condition: &conditionSelector{record: record},
		capture:   &captureFlow{publish: publish, onVerified: onVerified},
	}
}

// captureEligibility gates capture on a verified location and a beneficiary
// who is not marked deceased.
func (v *visit) captureEligibility() error {
	if !v.location.check.IsVerified() {
		return domain.RejectTransition("begin capture", "location not verified")
	}
	if v.condition.status() == domain.ConditionDeceased {
		return domain.RejectTransition("begin capture", "beneficiary marked deceased")
	}
	return nil
}
