// Package topology describes the network topology a provisioning run builds
// and records the identifiers AWS assigned to what was built.
package topology
