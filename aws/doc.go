// Package aws provisions a small network topology on Amazon Web Services.
// The exported Adapter creates VPCs, subnets, internet gateways, route
// tables, security groups, key pairs, instances, elastic IPs, volumes,
// snapshots and ELBv2 target groups, and returns the identifiers AWS assigns.
package aws
