package ports

import "github.com/bft-labs/pencen/internal/domain"

// ReceiptIssuer produces the receipt for a released disbursement.
type ReceiptIssuer interface {
	Issue(agentID string, beneficiary domain.BeneficiaryRecord) (domain.TransactionReceipt, error)
}
