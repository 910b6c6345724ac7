package domain

import "time"

// PermitStatus enumerates lifecycle states for work permits.
type PermitStatus string

const (
	PermitStatusPendingApproval PermitStatus = "PENDING_APPROVAL"
	PermitStatusApproved        PermitStatus = "APPROVED"
	PermitStatusActive          PermitStatus = "ACTIVE"
	PermitStatusCompleted       PermitStatus = "COMPLETED"
	PermitStatusRejected        PermitStatus = "REJECTED"
	PermitStatusCancelled       PermitStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is possible.
func (s PermitStatus) IsTerminal() bool {
	switch s {
	case PermitStatusCompleted, PermitStatusRejected, PermitStatusCancelled:
		return true
	}
	return false
}

// PermitType enumerates the kinds of physical work a permit covers.
type PermitType string

const (
	PermitTypeGeneral   PermitType = "GENERAL"
	PermitTypeHotWork   PermitType = "HOT_WORK"
	PermitTypeHighLevel PermitType = "HIGH_LEVEL"
	PermitTypeMedia     PermitType = "MEDIA"
	PermitTypeSpecial   PermitType = "SPECIAL"
)

// Category groups permit types for reporting. Hot work, work at height and
// special operations share an elevated compliance regime.
func (t PermitType) Category() string {
	switch t {
	case PermitTypeHotWork, PermitTypeHighLevel, PermitTypeSpecial:
		return "high_risk_works"
	default:
		return "standard_works"
	}
}

// RiskLevel classifies the severity of a permit's work.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

var riskRank = map[RiskLevel]int{
	RiskLevelLow:      1,
	RiskLevelMedium:   2,
	RiskLevelHigh:     3,
	RiskLevelCritical: 4,
}

// Below reports whether r ranks lower than other.
func (r RiskLevel) Below(other RiskLevel) bool {
	return riskRank[r] < riskRank[other]
}

// ApprovalDecision enumerates terminal review outcomes.
type ApprovalDecision string

const (
	DecisionApprove ApprovalDecision = "approve"
	DecisionReject  ApprovalDecision = "reject"
)

// ApprovalEntry records a single review decision. Entries are append-only.
type ApprovalEntry struct {
	ActorID   string           `json:"actor_id"`
	Decision  ApprovalDecision `json:"decision"`
	Comments  string           `json:"comments,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// InspectionType enumerates when an inspection takes place relative to the work.
type InspectionType string

const (
	InspectionPreWork    InspectionType = "pre-work"
	InspectionDuringWork InspectionType = "during-work"
	InspectionPostWork   InspectionType = "post-work"
)

// InspectionResult enumerates inspection outcomes.
type InspectionResult string

const (
	InspectionPass        InspectionResult = "pass"
	InspectionFail        InspectionResult = "fail"
	InspectionConditional InspectionResult = "conditional"
)

// Inspection is a point-in-time compliance check. Append-only, never edited.
type Inspection struct {
	Inspector string           `json:"inspector"`
	Type      InspectionType   `json:"type"`
	Findings  []string         `json:"findings,omitempty"`
	Status    InspectionResult `json:"status"`
	Comments  string           `json:"comments,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// IncidentSeverity enumerates adverse event severity.
type IncidentSeverity string

const (
	IncidentMinor    IncidentSeverity = "minor"
	IncidentMajor    IncidentSeverity = "major"
	IncidentCritical IncidentSeverity = "critical"
)

// Incident is an adverse event recorded against a permit. Append-only.
type Incident struct {
	Description string           `json:"description"`
	Severity    IncidentSeverity `json:"severity"`
	Injuries    string           `json:"injuries,omitempty"`
	Damage      string           `json:"damage,omitempty"`
	Actions     string           `json:"actions,omitempty"`
	ReportedBy  string           `json:"reported_by"`
	Timestamp   time.Time        `json:"timestamp"`
}

// WorkPermit is the aggregate root for a physical work authorization.
// Inspections, incidents and approval history are owned sub-records embedded
// in the aggregate; they are never addressed or mutated independently.
type WorkPermit struct {
	ID                 string
	PermitNumber       string
	MallID             string
	TenantID           *string
	Type               PermitType
	RiskLevel          RiskLevel
	Status             PermitStatus
	Description        string
	Location           string
	ScheduledStart     time.Time
	ScheduledEnd       time.Time
	ActualStart        *time.Time
	ApprovalHistory    []ApprovalEntry
	Inspections        []Inspection
	Incidents          []Incident
	CompletionNotes    *string
	CancellationReason *string
	RejectionReason    *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ValidType reports whether t is a known permit type.
func ValidType(t PermitType) bool {
	switch t {
	case PermitTypeGeneral, PermitTypeHotWork, PermitTypeHighLevel, PermitTypeMedia, PermitTypeSpecial:
		return true
	}
	return false
}

// ValidRiskLevel reports whether r is a known risk level.
func ValidRiskLevel(r RiskLevel) bool {
	_, ok := riskRank[r]
	return ok
}

// CriticalRiskAllowed reports whether the type may carry CRITICAL risk.
// A GENERAL or MEDIA permit can never be critical.
func CriticalRiskAllowed(t PermitType) bool {
	switch t {
	case PermitTypeHotWork, PermitTypeHighLevel, PermitTypeSpecial:
		return true
	}
	return false
}

// DefaultRiskLevel derives the baseline risk for a permit type when the
// caller does not supply one.
func DefaultRiskLevel(t PermitType) RiskLevel {
	switch t {
	case PermitTypeHotWork, PermitTypeHighLevel:
		return RiskLevelHigh
	case PermitTypeSpecial:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// ValidInspectionType reports whether t is a known inspection type.
func ValidInspectionType(t InspectionType) bool {
	switch t {
	case InspectionPreWork, InspectionDuringWork, InspectionPostWork:
		return true
	}
	return false
}

// ValidInspectionResult reports whether r is a known inspection outcome.
func ValidInspectionResult(r InspectionResult) bool {
	switch r {
	case InspectionPass, InspectionFail, InspectionConditional:
		return true
	}
	return false
}

// ValidIncidentSeverity reports whether s is a known severity.
func ValidIncidentSeverity(s IncidentSeverity) bool {
	switch s {
	case IncidentMinor, IncidentMajor, IncidentCritical:
		return true
	}
	return false
}
