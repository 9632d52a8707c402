package model

import "time"

// MaxPageSize is the fixed page-size ceiling for a single list fetch. There is no
// continuation: a list never returns more than this many records.
const MaxPageSize = 100

// Record is a single custom object record as returned by the remote object store.
// ID is assigned remotely and is never set on locally constructed records.
type Record struct {
	ID         string
	Properties map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Archived   bool
}

// Value returns the record's value for the named property, or "" when the remote
// store did not return it.
func (r Record) Value(name string) string {
	return r.Properties[name]
}

// RecordList is an ordered page of records, bounded by MaxPageSize.
type RecordList []Record
