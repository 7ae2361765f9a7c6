// Package model defines the core data types shared across capstan: project
// descriptors and records, solution groupings, ordered project collections,
// and the BuildInformation aggregate the release pipeline fills in.
package model
