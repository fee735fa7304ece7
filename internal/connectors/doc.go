// Package connectors holds the message-store integrations the pipeline reads
// newsletters from. Each subpackage talks to one provider and exposes a
// driven.MessageStore; google/gmail is the only one today.
package connectors
