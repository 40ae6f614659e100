package dispatch

// Verb names one of the lifecycle operations the dispatcher executes.
type Verb string

const (
	VerbBuild   Verb = "build"
	VerbKill    Verb = "kill"
	VerbPull    Verb = "pull"
	VerbRemove  Verb = "remove"
	VerbRestart Verb = "restart"
	VerbScale   Verb = "scale"
	VerbStart   Verb = "start"
	VerbStop    Verb = "stop"
	VerbUp      Verb = "up"
)

// IsValid reports whether the verb has a handler. The handler table is
// the single source of truth for the verb set.
func (v Verb) IsValid() bool {
	_, ok := handlers[v]
	return ok
}
