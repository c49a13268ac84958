package descriptor

import "time"

// ObjectDescriptor describes an externally defined object by name, numeric
// identifier, last use time and use count.
//
// It is a plain mutable record. The zero value is ready to use. Accessors do
// not validate and are not synchronized; an instance shared between
// goroutines must be guarded by its owner.
type ObjectDescriptor struct {
	name         string
	identifier   int
	lastUsedDate time.Time
	usedCount    int
}

// Name returns the display name. An empty string means no name was set.
func (d *ObjectDescriptor) Name() string {
	return d.name
}

// SetName replaces the display name.
func (d *ObjectDescriptor) SetName(name string) {
	d.name = name
}

// Identifier returns the numeric identifier. Zero is a valid value.
func (d *ObjectDescriptor) Identifier() int {
	return d.identifier
}

// SetIdentifier replaces the numeric identifier.
func (d *ObjectDescriptor) SetIdentifier(identifier int) {
	d.identifier = identifier
}

// LastUsedDate returns the stored timestamp. The zero time means absent.
func (d *ObjectDescriptor) LastUsedDate() time.Time {
	return d.lastUsedDate
}

// SetLastUsedDate stores t as is. Callers set it when a use happens; nothing
// refreshes it automatically.
func (d *ObjectDescriptor) SetLastUsedDate(t time.Time) {
	d.lastUsedDate = t
}

// UsedCount returns how many uses have been recorded.
func (d *ObjectDescriptor) UsedCount() int {
	return d.usedCount
}

// SetUsedCount replaces the use count. Incrementing on use is up to the owner.
func (d *ObjectDescriptor) SetUsedCount(count int) {
	d.usedCount = count
}
