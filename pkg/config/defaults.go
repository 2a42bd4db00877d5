package config

const (
	defaultClientEndpoint = "http://localhost:8088/ask"
	defaultClientTimeout  = "30s"

	defaultMockListen = ":8088"

	defaultKafkaTopic = "askstream.answers"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			Endpoint: defaultClientEndpoint,
			Timeout:  defaultClientTimeout,
		},
		Mock: MockConfig{
			Listen: defaultMockListen,
		},
		EventStream: EventStreamConfig{
			KafkaTopic: defaultKafkaTopic,
		},
	}
}
