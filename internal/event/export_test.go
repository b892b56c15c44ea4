package event

// NewWithChannel exposes the channel seam to the external tests.
var NewWithChannel = newWithChannel
