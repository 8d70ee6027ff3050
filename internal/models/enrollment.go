package models

import "time"

type CompletedModule struct {
	ModuleID    string    `json:"module_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// Enrollment links a student to a course and carries its completion state.
// Progress is always derived from CompletedModules, never set directly.
type Enrollment struct {
	CourseID           string            `json:"course_id"`
	EnrolledAt         time.Time         `json:"enrolled_at"`
	CompletedModules   []CompletedModule `json:"completed_modules"`
	Progress           int               `json:"progress"`
	LastAccessedModule *string           `json:"last_accessed_module"`
	LastAccessed       *time.Time        `json:"last_accessed"`
}

func NewEnrollment(courseID string, at time.Time) Enrollment {
	return Enrollment{
		CourseID:         courseID,
		EnrolledAt:       at,
		CompletedModules: []CompletedModule{},
		Progress:         0,
	}
}

// CalculateProgress rounds 100*completed/total half up; zero modules means zero progress
func CalculateProgress(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}

func (e *Enrollment) HasCompleted(moduleID string) bool {
	for _, cm := range e.CompletedModules {
		if cm.ModuleID == moduleID {
			return true
		}
	}
	return false
}

// Complete records moduleID as completed at the given time
func (e *Enrollment) Complete(moduleID string, at time.Time) {
	e.CompletedModules = append(e.CompletedModules, CompletedModule{ModuleID: moduleID, CompletedAt: at})
	id := moduleID
	e.LastAccessedModule = &id
	accessed := at
	e.LastAccessed = &accessed
}

// Reset removes moduleID from the completed set; absent ids are ignored
func (e *Enrollment) Reset(moduleID string) bool {
	kept := make([]CompletedModule, 0, len(e.CompletedModules))
	removed := false
	for _, cm := range e.CompletedModules {
		if cm.ModuleID == moduleID {
			removed = true
			continue
		}
		kept = append(kept, cm)
	}
	e.CompletedModules = kept
	return removed
}

// Prune drops completions for modules no longer in the course
func (e *Enrollment) Prune(moduleIDs map[string]struct{}) bool {
	kept := make([]CompletedModule, 0, len(e.CompletedModules))
	for _, cm := range e.CompletedModules {
		if _, ok := moduleIDs[cm.ModuleID]; ok {
			kept = append(kept, cm)
		}
	}
	changed := len(kept) != len(e.CompletedModules)
	e.CompletedModules = kept
	return changed
}

// Recompute sets Progress from the completed set and reports whether it changed
func (e *Enrollment) Recompute(totalModules int) bool {
	progress := CalculateProgress(len(e.CompletedModules), totalModules)
	if progress == e.Progress {
		return false
	}
	e.Progress = progress
	return true
}

func (e *Enrollment) CompletedModuleIDs() []string {
	ids := make([]string, 0, len(e.CompletedModules))
	for _, cm := range e.CompletedModules {
		ids = append(ids, cm.ModuleID)
	}
	return ids
}
