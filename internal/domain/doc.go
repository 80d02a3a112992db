// Package domain contains the core entities of the service: the account,
// its stored credential, and its profile, together with the validation
// rules they must satisfy. It is independent of any storage or delivery
// mechanism.
package domain
