package ir

// Version constants for serialized buffers and generated artifacts.
const (
	// BufferFormat is the version of the canonical call buffer encoding.
	BufferFormat = "1"

	// GeneratorVersion is stamped into generated artifacts.
	GeneratorVersion = "0.1.0"
)
