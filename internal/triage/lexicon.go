package triage

import "strings"

// maintenanceTerms is the hand-curated maintenance vocabulary. A complaint
// containing any of these as a substring counts as lexical maintenance
// evidence. The set is configuration data and ships verbatim.
var maintenanceTerms = []string{
	"water", "leak", "pipe", "tap", "toilet", "flush", "sink", "drain", "shower", "basin", "sewage",
	"power", "light", "switch", "socket", "wire", "electric", "bulb", "fuse", "trip", "voltage",
	"server", "wifi", "network", "system", "computer", "printer", "internet", "mouse", "keyboard", "monitor", "software", "login",
	"fire", "alarm", "generator", "ups", "extinguisher",
	"door", "lift", "elevator", "ac", "fan", "smell", "smoke", "cool", "heat", "air",
	"broken", "damage", "fix", "repair", "clean", "dirty", "dust", "pest", "insect", "rat",
	"wall", "ceiling", "floor", "window", "glass", "furniture", "chair", "table", "lock", "key", "handle", "knob",
}

// personalTerms marks complaints about the person rather than the premises.
// Matched on whole tokens only: many of these are short enough to hide inside
// ordinary maintenance words, so substring matching would veto good tickets.
var personalTerms = []string{
	"exam", "injury", "injured", "pain", "sick", "ill",
	"study", "syllabus", "assignment", "deadline",
	"feeling", "stress", "tired", "anxiety", "depressed", "grade", "marks",
}

// hasMaintenanceTerm reports whether any maintenance term appears as a
// substring of the normalized text.
func hasMaintenanceTerm(text string) bool {
	for _, term := range maintenanceTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// hasPersonalTerm reports whether any personal term equals a whitespace
// delimited token of the normalized text.
func hasPersonalTerm(text string) bool {
	for _, token := range strings.Fields(text) {
		for _, term := range personalTerms {
			if token == term {
				return true
			}
		}
	}
	return false
}

// Normalize lower-cases and trims complaint text. Every triage decision and
// every keyword check runs over the normalized form.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
