// Package store defines the account persistence contract and the error
// taxonomy shared by its implementations. Backends live under
// internal/platform; the service layer depends only on the interfaces
// and sentinel errors defined here.
package store
