package zettel

// ProcessNote runs the full normalization pipeline against note in place:
// consistency, then migration, then consistency again — each gated step
// applying its project-specific extension when the note's type (as read
// once, before any stage runs) is "project" or "loop".
//
// The up-front is-project snapshot matters: migration itself may rewrite
// `type` (e.g. "loop" -> "project"), but whether the *project* extensions
// run this pass was already decided before that rewrite happened.
func ProcessNote(note *Note) {
	isProject := note.IsProjectType()

	EnsureConsistency(note)
	if isProject {
		EnsureProjectConsistency(note)
	}

	MigrateBase(note)
	if isProject {
		MigrateLoopLog(note)
		MigrateParentReference(note)
	}

	EnsureConsistency(note)
	if isProject {
		EnsureProjectConsistency(note)
	}
}
