package domain

// ProgressFunc observes coarse milestones of a long operation. It never affects the
// result.
type ProgressFunc func(message string, percent int)

// Report invokes p if set. A panicking observer is ignored.
func (p ProgressFunc) Report(message string, percent int) {
	if p == nil {
		return
	}
	defer func() { _ = recover() }()
	p(message, percent)
}
