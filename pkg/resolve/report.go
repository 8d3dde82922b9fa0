package resolve

import "time"

// Report summarizes one resolution pass. A dependency name never appears
// in both Installed and Conflicts.
type Report struct {
	ID              string            `json:"id"`
	Started         time.Time         `json:"started"`
	Duration        time.Duration     `json:"duration_ns"`
	Satisfied       []string          `json:"satisfied"`
	MissingRequired []string          `json:"missing_required"`
	MissingSoft     []string          `json:"missing_soft"`
	Installed       []InstallOutcome  `json:"installed,omitempty"`
	Conflicts       map[string]string `json:"conflicts"`
}

// InstallOutcome records one successful acquisition. Source is empty
// when the dependency was already present on disk.
type InstallOutcome struct {
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
}
