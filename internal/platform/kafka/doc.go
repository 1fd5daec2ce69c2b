// Package kafka connects the analysis pipeline to Kafka using segmentio/kafka-go.
//
// Publisher forwards lifecycle events to a topic. IngestConsumer reads raw log
// submissions from a topic and feeds them through the service boundary.
package kafka
