//go:build wireinject
// +build wireinject

package api

import (
	"github.com/google/wire"

	"github/chapool/hw-bridge/internal/config"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	NewClock,
	NewMetrics,
	NewTransportAdapters,
	NewHWService,
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}
