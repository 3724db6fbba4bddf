package domain

import "time"

// Money is an amount in the currency's minor units (sen for MYR).
type Money struct {
	MinorUnits int64
	Currency   string
}

// TransactionReceipt is issued when a disbursement is released.
type TransactionReceipt struct {
	TransactionID   string
	AgentID         string
	BeneficiaryName string
	BeneficiaryID   string
	Timestamp       time.Time
	Amount          Money
}
