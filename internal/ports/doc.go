// Package ports defines the interfaces (ports) that connect the workflow
// core to infrastructure adapters.
//
// # Port Interfaces
//
//   - [Delayer]: the timer/delay service used to simulate hardware latency
//   - [ReceiptIssuer]: builds the transaction receipt on release
//   - [Logger]: structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters, internal/receipt) implement
// them with real clocks, UUIDs and zerolog.
package ports
