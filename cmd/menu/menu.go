package menu

import (
	"github.com/ryanreadbooks/zaikit/cmd/app"
	"github.com/ryanreadbooks/zaikit/explorer"

	"github.com/spf13/cobra"
)

var MenuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick examples from an interactive menu.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.Env(cmd.Context())
		if err != nil {
			return err
		}
		return explorer.RunMenu(cmd.Context(), env)
	},
}

var ModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show the models behind each capability.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// no clients needed, so no api key either
		explorer.PrintModels(&explorer.Env{Config: app.Config(), Out: app.Printer()})
		return nil
	},
}
