// Package domain contains the core entities and value objects of the
// disbursement workflow.
//
// This package is the innermost layer. It has no dependencies on
// infrastructure concerns (timers, logging, formatting) and holds only the
// vocabulary of the workflow and its invariants.
//
// # Entities
//
//   - [Stage]: one of the four top-level workflow phases
//   - [Session]: the operator's agent id and current stage
//   - [BeneficiaryRecord]: the person read from the identity card
//   - [LocationCheck]: simulated GPS fix progress
//   - [BiometricCapture]: simulated thumbprint capture progress
//   - [TransactionReceipt]: proof of the released payment
package domain
