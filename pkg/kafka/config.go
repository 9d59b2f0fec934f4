// Package kafka wraps segmentio/kafka-go with the connection policy of
// the read layer: consumer-group reads with explicit commits, and
// at-least-once writes.
package kafka

// Config holds Kafka connection parameters.
type Config struct {
	Brokers       []string
	ConsumerGroup string

	// SASL configuration for authentication.
	SASLEnabled   bool
	SASLMechanism string // "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string

	// TLS enables TLS for broker connections. CAFile optionally pins the
	// broker CA; InsecureSkipVerify is for local brokers only.
	TLS                bool
	CAFile             string
	InsecureSkipVerify bool
}
