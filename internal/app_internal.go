package internal

import "github.com/rios0rios0/modelgit/internal/domain/entities"

// AppInternal holds what the CLI entry point needs from the container.
type AppInternal struct {
	controllers []entities.Controller
}

// NewAppInternal creates the application from the registered controllers.
func NewAppInternal(controllers *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: *controllers}
}

// GetControllers returns every controller in registration order.
func (it *AppInternal) GetControllers() []entities.Controller {
	return it.controllers
}
