package models

import "time"

// Meta is embedded in every stored document. ID is assigned on insert and never
// changes; Version is bumped by every successful write and guards
// read-modify-write cycles.
type Meta struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	CreatedOn time.Time `bson:"createdOn" json:"createdOn"`
	UpdatedOn time.Time `bson:"updatedOn" json:"updatedOn"`
	Version   int64     `bson:"version" json:"version"`
}

// Document is implemented by pointers to every stored type through the
// embedded Meta.
type Document interface {
	DocMeta() *Meta
}

func (m *Meta) DocMeta() *Meta { return m }
