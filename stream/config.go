package stream

const (
	defaultInitialBufferSize = 4096
	minBufferSize            = 512
)

type Config struct {
	// Initial capacity of both the read and the write buffers.
	// Buffers still grow without bound past this size.
	InitialBufferSize int
}

func DefaultConfig() Config {
	return Config{
		InitialBufferSize: defaultInitialBufferSize,
	}
}

func sanitizeConfig(cfg Config) Config {
	if cfg.InitialBufferSize < minBufferSize {
		cfg.InitialBufferSize = minBufferSize
	}
	return cfg
}
