package recommend

import "strings"

// SkillOverlap counts how many of the required skills appear in the user's
// skill set, matching case-insensitively on whole trimmed entries.
func SkillOverlap(userSkills, requiredSkills []string) int {
	if len(userSkills) == 0 || len(requiredSkills) == 0 {
		return 0
	}

	have := make(map[string]bool, len(userSkills))
	for _, s := range userSkills {
		cleaned := strings.ToLower(strings.TrimSpace(s))
		if cleaned != "" {
			have[cleaned] = true
		}
	}

	overlap := 0
	for _, s := range requiredSkills {
		if have[strings.ToLower(strings.TrimSpace(s))] {
			overlap++
		}
	}
	return overlap
}
