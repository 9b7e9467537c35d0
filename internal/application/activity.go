package application

type ActivityMonitor interface {
	IsAnyAudioActive() bool
}

// SilentMonitor reports no competing audio. Used where no session source
// is available.
type SilentMonitor struct{}

func (SilentMonitor) IsAnyAudioActive() bool { return false }
