package domain

// Status is the two-state approval lifecycle shared by testimonials,
// volunteer applications and event registrations. Approved is terminal.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
)

// Field is one attribute of a partial update, keyed by its client-side
// (camelCase) attribute name. Repositories translate Attr to a column.
type Field struct {
	Attr  string
	Value any
}

// ApproveFields is the only status patch a client can issue.
func ApproveFields() []Field {
	return []Field{{Attr: "status", Value: StatusApproved}}
}
