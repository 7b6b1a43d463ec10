package metrics

// DefaultAddress is the listen address of the metrics endpoint when none is
// configured.
const DefaultAddress = ":9090"

// Config controls how decode metrics are registered and exposed.
type Config struct {
	// Address is where the CLI serves /metrics, e.g. ":9090" or
	// "127.0.0.1:9100". Empty disables the server.
	Address string `yaml:"address"`

	// EnableDefaultCollectors registers the Go runtime and process
	// collectors next to the decode metrics.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors"`

	// Namespace prefixes every metric name, e.g. "ingest" yields
	// "ingest_relaxavro_decodes_total".
	Namespace string `yaml:"namespace"`

	// ServiceName is attached to every metric as the "service" label.
	ServiceName string `yaml:"service_name"`
}
