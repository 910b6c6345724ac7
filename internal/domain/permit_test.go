package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/permit-service/internal/domain"
)

func TestPermitStatus_IsTerminal(t *testing.T) {
	terminal := []domain.PermitStatus{
		domain.PermitStatusCompleted,
		domain.PermitStatusRejected,
		domain.PermitStatusCancelled,
	}
	for _, status := range terminal {
		require.Truef(t, status.IsTerminal(), "%s", status)
	}

	open := []domain.PermitStatus{
		domain.PermitStatusPendingApproval,
		domain.PermitStatusApproved,
		domain.PermitStatusActive,
	}
	for _, status := range open {
		require.Falsef(t, status.IsTerminal(), "%s", status)
	}
}

func TestPermitType_Category(t *testing.T) {
	require.Equal(t, "high_risk_works", domain.PermitTypeHotWork.Category())
	require.Equal(t, "high_risk_works", domain.PermitTypeHighLevel.Category())
	require.Equal(t, "high_risk_works", domain.PermitTypeSpecial.Category())
	require.Equal(t, "standard_works", domain.PermitTypeGeneral.Category())
	require.Equal(t, "standard_works", domain.PermitTypeMedia.Category())
}

func TestRiskLevel_Below(t *testing.T) {
	require.True(t, domain.RiskLevelLow.Below(domain.RiskLevelMedium))
	require.True(t, domain.RiskLevelMedium.Below(domain.RiskLevelHigh))
	require.True(t, domain.RiskLevelHigh.Below(domain.RiskLevelCritical))
	require.False(t, domain.RiskLevelHigh.Below(domain.RiskLevelHigh))
	require.False(t, domain.RiskLevelCritical.Below(domain.RiskLevelHigh))
}

func TestDefaultRiskLevel(t *testing.T) {
	require.Equal(t, domain.RiskLevelHigh, domain.DefaultRiskLevel(domain.PermitTypeHotWork))
	require.Equal(t, domain.RiskLevelHigh, domain.DefaultRiskLevel(domain.PermitTypeHighLevel))
	require.Equal(t, domain.RiskLevelMedium, domain.DefaultRiskLevel(domain.PermitTypeSpecial))
	require.Equal(t, domain.RiskLevelLow, domain.DefaultRiskLevel(domain.PermitTypeGeneral))
	require.Equal(t, domain.RiskLevelLow, domain.DefaultRiskLevel(domain.PermitTypeMedia))
}

func TestCriticalRiskAllowed(t *testing.T) {
	require.True(t, domain.CriticalRiskAllowed(domain.PermitTypeHotWork))
	require.True(t, domain.CriticalRiskAllowed(domain.PermitTypeHighLevel))
	require.True(t, domain.CriticalRiskAllowed(domain.PermitTypeSpecial))
	require.False(t, domain.CriticalRiskAllowed(domain.PermitTypeGeneral))
	require.False(t, domain.CriticalRiskAllowed(domain.PermitTypeMedia))
}

func TestValidators(t *testing.T) {
	require.True(t, domain.ValidType(domain.PermitTypeMedia))
	require.False(t, domain.ValidType("DEMOLITION"))

	require.True(t, domain.ValidRiskLevel(domain.RiskLevelCritical))
	require.False(t, domain.ValidRiskLevel("EXTREME"))

	require.True(t, domain.ValidRole(domain.RoleInspector))
	require.False(t, domain.ValidRole("SUPERVISOR"))

	require.True(t, domain.ValidInspectionType(domain.InspectionPostWork))
	require.False(t, domain.ValidInspectionType("final"))

	require.True(t, domain.ValidInspectionResult(domain.InspectionConditional))
	require.False(t, domain.ValidInspectionResult("passed"))

	require.True(t, domain.ValidIncidentSeverity(domain.IncidentMajor))
	require.False(t, domain.ValidIncidentSeverity("catastrophic"))
}

func TestTransitions_CoverEveryNonTerminalState(t *testing.T) {
	sources := make(map[domain.PermitStatus]bool)
	for _, tr := range domain.Transitions {
		sources[tr.Src] = true
		require.Falsef(t, tr.Src.IsTerminal(), "terminal %s must not be a source", tr.Src)
	}
	require.True(t, sources[domain.PermitStatusPendingApproval])
	require.True(t, sources[domain.PermitStatusApproved])
	require.True(t, sources[domain.PermitStatusActive])
}
