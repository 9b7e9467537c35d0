package domain

// DeviceDescriptor is a transient view of an output endpoint. It is
// re-queried on every playback attempt and never cached.
type DeviceDescriptor struct {
	ID                string
	Index             int
	Name              string
	MaxOutputChannels int
}
