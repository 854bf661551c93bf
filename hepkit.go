// Package hepkit converts publisher metadata into HEP literature records.
package hepkit

const (
	// Version of the toolkit.
	Version = "0.1.0"
	// AppName is used for cache and config directories.
	AppName = "hepkit"
)
