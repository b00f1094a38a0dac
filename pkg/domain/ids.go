// Package domain defines the typed identifiers and the polymorphic actor
// reference shared by every subsystem.
package domain

import "strconv"

// Typed numeric identifiers. Keeping them distinct types prevents a page ID
// from being passed where a transaction ID is expected.
type (
	UserID         int64
	SocieteID      int64
	AbonnementID   int64
	PageID         int64
	InformationID  int64
	TransactionID  int64
	NotificationID int64
	PreferenceID   int64
)

func (id UserID) Int64() int64         { return int64(id) }
func (id SocieteID) Int64() int64      { return int64(id) }
func (id AbonnementID) Int64() int64   { return int64(id) }
func (id PageID) Int64() int64         { return int64(id) }
func (id InformationID) Int64() int64  { return int64(id) }
func (id TransactionID) Int64() int64  { return int64(id) }
func (id NotificationID) Int64() int64 { return int64(id) }
func (id PreferenceID) Int64() int64   { return int64(id) }

func (id PageID) String() string         { return strconv.FormatInt(int64(id), 10) }
func (id NotificationID) String() string { return strconv.FormatInt(int64(id), 10) }
