// Package services contains the core business logic implementations.
// These services implement the driving port interfaces and depend only
// on driven port interfaces, keeping business logic independent of
// infrastructure concerns.
package services
