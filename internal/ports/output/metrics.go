package output

// Recorder receives operational counters.
type Recorder interface {
	Reaction(command, outcome string)
	SuppressedEcho()
	ThreadSync(action, result string)
	StoreError(op string)
	LineupPings(n int)
}
