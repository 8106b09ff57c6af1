package internal

import (
	"fmt"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/infrastructure/controllers"
	"github.com/rios0rios0/modelgit/internal/infrastructure/repositories"
	"go.uber.org/dig"
)

// RegisterProviders registers every layer of modelgit with the DIG container:
// the go-git and model file adapters, the settings and event bus, the
// repository commands and finally the CLI controllers.
func RegisterProviders(container *dig.Container) error {
	layers := []struct {
		name     string
		register func(*dig.Container) error
	}{
		{"repositories", repositories.RegisterProviders},
		{"entities", entities.RegisterProviders},
		{"commands", commands.RegisterProviders},
		{"controllers", controllers.RegisterProviders},
	}
	for _, layer := range layers {
		if err := layer.register(container); err != nil {
			return fmt.Errorf("failed to register %s: %w", layer.name, err)
		}
	}

	if err := container.Provide(NewAppInternal); err != nil {
		return fmt.Errorf("failed to register the app: %w", err)
	}
	return nil
}
