package session

// Timer is the handle of the 1 Hz countdown schedule. Each start issues a new
// schedule id and stop invalidates it, so ticks scheduled for an earlier run
// can never reach a later one.
type Timer struct {
	id     uint64
	active bool
}

func (t *Timer) start() uint64 {
	t.id++
	t.active = true
	return t.id
}

func (t *Timer) stop() {
	t.active = false
}

// Live reports whether id names the running schedule.
func (t *Timer) Live(id uint64) bool {
	return t.active && id == t.id
}

// Active reports whether any schedule is running.
func (t *Timer) Active() bool {
	return t.active
}

// ID returns the current schedule id.
func (t *Timer) ID() uint64 {
	return t.id
}
