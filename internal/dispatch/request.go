package dispatch

import "time"

// Request carries one verb invocation and its verb-specific options.
// Fields irrelevant to the requested verb are ignored by its handler.
type Request struct {
	Verb     Verb
	Services []string // service name filter; empty selects every service

	Timeout          *time.Duration    // stop, restart, remove; nil uses the daemon default
	Signal           string            // kill
	NoCache          bool              // build
	InsecureRegistry bool              // pull, up
	NoBuild          bool              // up
	NoRecreate       bool              // up
	NoDeps           bool              // up
	Scale            map[string]string // scale; service name to desired count, unparsed
}
