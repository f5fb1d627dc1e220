package domain

// SubjectType differentiates staff tokens from system-initiated actions
// such as the periodic SLA sweep.
type SubjectType string

const (
	SubjectTypeStaff  SubjectType = "STAFF"
	SubjectTypeSystem SubjectType = "SYSTEM"
)
