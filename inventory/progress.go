package inventory

// ProgressSink receives per-section collection events. The console renderer
// uses it to show live progress; everything else passes nil.
type ProgressSink interface {
	SectionStarted(section string)
	SectionFinished(section string, result SectionResult)
}

// nopProgress is used when the caller does not want progress events.
type nopProgress struct{}

func (nopProgress) SectionStarted(string)                 {}
func (nopProgress) SectionFinished(string, SectionResult) {}
