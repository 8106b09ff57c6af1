package entities

import "github.com/spf13/cobra"

// ControllerBind is the Cobra metadata of a controller.
type ControllerBind struct {
	Use   string
	Short string
	Long  string
}

// Controller is one CLI subcommand.
type Controller interface {
	GetBind() ControllerBind
	Execute(command *cobra.Command, arguments []string)
}

// FlagsController is implemented by controllers that declare their own flags.
type FlagsController interface {
	AddFlags(command *cobra.Command)
}
