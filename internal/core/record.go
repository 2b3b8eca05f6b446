package core

// Entity collection names shared by the boards, the automation rules and
// the persistence layer.
const (
	EntityTasks       = "tasks"
	EntityLeads       = "leads"
	EntityBilling     = "billing"
	EntityClients     = "clients"
	EntityEmployees   = "employees"
	EntityTimeEntries = "time_entries"
)

// Entities lists every collection the persistence layer knows about.
var Entities = []string{
	EntityTasks,
	EntityLeads,
	EntityBilling,
	EntityClients,
	EntityEmployees,
	EntityTimeEntries,
}

// IsEntity reports whether name is a known collection.
func IsEntity(name string) bool {
	for _, e := range Entities {
		if e == name {
			return true
		}
	}
	return false
}

type (
	// Record is a loosely-typed row: field name to a primitive value
	// (string, number, bool, date string or nil). No schema is assumed.
	Record map[string]any
)

// FieldID is the identifier field assigned by the persistence layer.
const FieldID = "id"

// ID returns the record identifier or "" when it has none.
func (r Record) ID() string {
	return ToString(r[FieldID])
}

// Has reports whether the field is present and not null.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && !IsNull(v)
}

// String returns the field coerced to a string; missing and null fields yield "".
func (r Record) String(field string) string {
	return ToString(r[field])
}

// Number returns the field parsed as a finite number.
func (r Record) Number(field string) (float64, bool) {
	return ParseNumber(r[field])
}

// Clone returns a shallow copy. Values are primitives so a shallow copy is
// enough to keep callers from mutating the original.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a new record with patch applied on top of r.
func (r Record) Merge(patch Record) Record {
	out := make(Record, len(r)+len(patch))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// CloneAll copies a slice of records.
func CloneAll(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
