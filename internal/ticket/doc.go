// Package ticket owns the maintenance ticket lifecycle: entities, checklist
// templates, the Store persistence contract, and the Service that runs
// complaints through triage and drives status transitions, assignment, work
// logging, and checklist updates.
package ticket
