package changeset

import (
	"time"

	"github.com/google/uuid"
)

// Record is one audited mutation: which entity changed, which fields, and
// the encoded before/after values. A Record is populated once and persisted
// as immutable history; nothing in this package mutates it afterwards.
type Record struct {
	// ID uniquely identifies the audit record.
	ID string `json:"id"`
	// Entity is the domain name of the mutated entity.
	Entity string `json:"entity"`
	// Key is the entity's primary key, rendered as a string.
	Key string `json:"key"`
	// Changed lists the mutated field names, in the order supplied by the
	// change tracker.
	Changed []string `json:"changed"`
	// Old and New hold the encoded before/after blobs. When both are
	// present each encodes exactly len(Changed) fields.
	Old string `json:"old"`
	New string `json:"new"`
	// CreatedAt is when the mutation was recorded, in UTC.
	CreatedAt time.Time `json:"created_at"`
}

// NewRecord builds an audit record from the triples supplied by the change
// tracker. It fails only on the Encode length contract.
func NewRecord(entity, key string, fields []string, oldValues, newValues []any) (*Record, error) {
	oldBlob, newBlob, err := Encode(fields, oldValues, newValues)
	if err != nil {
		return nil, err
	}

	return &Record{
		ID:        uuid.NewString(),
		Entity:    entity,
		Key:       key,
		Changed:   append([]string(nil), fields...),
		Old:       oldBlob,
		New:       newBlob,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// FieldChange returns the before and after values of one field. present is
// false when neither blob carries the field, which is a normal outcome for
// partially-changed records.
func (r *Record) FieldChange(field string) (oldValue, newValue any, present bool, err error) {
	oldValue, oldOK, err := DecodeField(r.Old, field)
	if err != nil {
		return nil, nil, false, err
	}
	newValue, newOK, err := DecodeField(r.New, field)
	if err != nil {
		return nil, nil, false, err
	}
	return oldValue, newValue, oldOK || newOK, nil
}
