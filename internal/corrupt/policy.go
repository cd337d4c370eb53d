package corrupt

import (
	"regexp"
	"strings"

	"github.com/ppiankov/boxcheck/internal/model"
)

// Policy is the corruption strategy chosen for an entity
type Policy string

const (
	PolicyDay     Policy = "day"
	PolicyPerson  Policy = "person"
	PolicyPlace   Policy = "place"
	PolicyNumber  Policy = "number"
	PolicyOrdinal Policy = "ordinal"
	PolicyTeam    Policy = "team"
	PolicyBenign  Policy = "benign"
	PolicyUnknown Policy = "unknown"
)

// Corruptible reports whether entities under this policy can be rewritten
func (p Policy) Corruptible() bool {
	return p != PolicyBenign && p != PolicyUnknown
}

var numericRange = regexp.MustCompile(`^\d+(\.\d+)?%?\s*-\s*\d+(\.\d+)?%?$`)

var benignTypes = map[model.EntityType]bool{
	model.EntityOrg:      true,
	model.EntityFacility: true,
	model.EntityDate:     true,
	model.EntityLocation: true,
	model.EntityEvent:    true,
	model.EntityProduct:  true,
	model.EntityNorp:     true,
}

// Classify picks the policy for an entity. The order of the checks matters:
// a day name typed DATE is still a day, and an ORG matching a team name is a team.
func Classify(e model.Entity, game *model.GameRecord) Policy {
	text := strings.TrimSpace(e.Text)
	lower := strings.ToLower(text)

	switch {
	case isWeekday(text):
		return PolicyDay
	case e.Type == model.EntityPerson:
		return PolicyPerson
	case e.Type == model.EntityPlace:
		return PolicyPlace
	case isNumericType(e.Type) || numericRange.MatchString(text):
		return PolicyNumber
	case e.Type == model.EntityOrdinal || strings.Contains(lower, "half") || strings.Contains(lower, "quarter"):
		return PolicyOrdinal
	case game != nil && isTeamName(text, game):
		return PolicyTeam
	case benignTypes[e.Type]:
		return PolicyBenign
	}
	return PolicyUnknown
}

func isNumericType(t model.EntityType) bool {
	switch t {
	case model.EntityCardinal, model.EntityPercent, model.EntityTime, model.EntityQuantity:
		return true
	}
	return false
}

func isWeekday(text string) bool {
	for _, d := range Weekdays {
		if strings.EqualFold(text, d) {
			return true
		}
	}
	return false
}

func isTeamName(text string, game *model.GameRecord) bool {
	for _, n := range game.TeamNames() {
		if text == n {
			return true
		}
	}
	return false
}
