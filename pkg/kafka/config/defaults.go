package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // all replicas
	DefaultProducerCompression  = "snappy"

	DefaultConsumerStartOffset    = -2 // oldest, the staff read model needs the full history
	DefaultConsumerMaxWait        = 500 * time.Millisecond
	DefaultConsumerCommitInterval = 0 // synchronous commits
	DefaultConsumerMaxRetries     = 3
	DefaultConsumerRetryBackoff   = 200 * time.Millisecond

	DefaultDLQSuffix = ".dlq"
)
