package ticket

// checklistTemplates maps a category to its ordered task list. The task
// strings are configuration data and ship verbatim; categories without a
// template get no checklist.
var checklistTemplates = map[string][]string{
	"Electrical": {
		"Power isolated",
		"Safety gloves worn",
		"Wiring inspected",
		"Faulty component identified",
		"Issue resolved",
		"Area secured",
	},
	"Plumbing": {
		"Water supply shut off",
		"Leak source identified",
		"Pipe or fitting repaired",
		"Water flow tested",
		"Area cleaned",
	},
	"IT": {
		"Issue reproduced",
		"System or network checked",
		"Logs reviewed",
		"Fix applied",
		"Service restored",
	},
	"General": {
		"Area inspected",
		"Safety risk assessed",
		"Repair completed",
		"Area cleaned",
		"Issue verified",
	},
}

// ChecklistTemplate returns the task list for a category, if one exists.
func ChecklistTemplate(category string) ([]string, bool) {
	tasks, ok := checklistTemplates[category]
	return tasks, ok
}
