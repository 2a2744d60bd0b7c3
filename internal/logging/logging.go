// Package logging wires up go.uber.org/zap with the production/
// development presets used across the retrieval pack
// (SoySergo-location_microservice, theRebelliousNerd-codenerd).
package logging

import "go.uber.org/zap"

// New builds a zap.Logger. development=true selects a human-readable,
// more verbose console encoder; otherwise the JSON production encoder.
func New(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// NoOp returns a logger that discards everything, used as a safe default
// when a caller does not supply one.
func NoOp() *zap.Logger {
	return zap.NewNop()
}
