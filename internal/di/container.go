// Package di provides dependency injection configuration for the roster server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/rosterapp/roster/internal/config"
	"github.com/rosterapp/roster/internal/di/providers"
	"github.com/rosterapp/roster/internal/logger"
	"github.com/rosterapp/roster/internal/service"
	"github.com/rosterapp/roster/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// State managers
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideMemberService)
	do.Provide(injector, providers.ProvideChatService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is listening.
// This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	// State managers load and seed their keys here.
	if _, err := do.Invoke[*service.TagService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.MemberService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.ChatServiceHandle](injector); err != nil {
		return err
	}

	// Server
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
