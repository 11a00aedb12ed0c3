// Package mqtt defines the transport-neutral contract for publishing plans.
package mqtt
