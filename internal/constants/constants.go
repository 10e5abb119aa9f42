package constants

import "time"

var WebSocketConfig = struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	LogPreviewRunes  int
}{
	HandshakeTimeout: 10 * time.Second,
	WriteTimeout:     10 * time.Second,
	LogPreviewRunes:  200, // unparsable client frames are logged up to this length
}

var HTTPConfig = struct {
	ReadHeaderTimeout time.Duration
	BuildTimeout      time.Duration
}{
	ReadHeaderTimeout: 10 * time.Second,
	BuildTimeout:      30 * time.Second, // service graph assembly at startup
}

var AnalysisDefaults = struct {
	Intensity int
}{
	Intensity: 5, // /api/analyze clients do not send an intensity
}
