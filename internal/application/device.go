package application

import "keep-connect/internal/domain"

type DeviceLocator interface {
	// FindOutputDevices returns output-capable devices whose name contains
	// nameFilter, case-insensitively, in enumeration order. An empty result
	// means the target is currently absent and is not an error.
	FindOutputDevices(nameFilter string) []domain.DeviceDescriptor
}

type Player interface {
	// Play writes buf to the first candidate that accepts it and reports
	// whether any did. Device errors are handled inside.
	Play(buf domain.AudioBuffer, channels int, candidates []domain.DeviceDescriptor) bool
}
