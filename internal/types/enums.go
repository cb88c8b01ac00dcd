package types

import "strings"

// Chantier status values
const (
	ChantierPlanned    = "planned"
	ChantierInProgress = "in progress"
	ChantierDone       = "done"
)

// Team member status values
const (
	MemberActive   = "active"
	MemberInactive = "inactive"
)

// Principal roles carried in access tokens
const (
	RoleUser = "user"
	RoleTeam = "team"
)

// Valid status values for validation
var ValidChantierStatuses = []string{
	ChantierPlanned, ChantierInProgress, ChantierDone,
}

var ValidMemberStatuses = []string{
	MemberActive, MemberInactive,
}

// Values the front-end sends.
var chantierStatusAliases = map[string]string{
	"planifié":    ChantierPlanned,
	"planifie":    ChantierPlanned,
	"en cours":    ChantierInProgress,
	"in_progress": ChantierInProgress,
	"terminé":     ChantierDone,
	"termine":     ChantierDone,
}

var memberStatusAliases = map[string]string{
	"actif":   MemberActive,
	"inactif": MemberInactive,
}

// NormalizeChantierStatus maps aliases onto canonical values. Unknown values
// are returned lower-cased so validation can reject them.
func NormalizeChantierStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if v, ok := chantierStatusAliases[s]; ok {
		return v
	}
	return s
}

func NormalizeMemberStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if v, ok := memberStatusAliases[s]; ok {
		return v
	}
	return s
}

func IsValidChantierStatus(s string) bool {
	return contains(ValidChantierStatuses, s)
}

func IsValidMemberStatus(s string) bool {
	return contains(ValidMemberStatuses, s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
