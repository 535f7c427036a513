package calc

import (
	"strings"

	"github.com/ryanreadbooks/zaikit/cmd/app"
	"github.com/ryanreadbooks/zaikit/pkg/calc"

	"github.com/spf13/cobra"
)

var CalcCmd = &cobra.Command{
	Use:   "calc <expression>",
	Short: "Evaluate an arithmetic expression with the agent's calculator.",
	Example: `  zaikit calc "(2 + 3) * 4 ** 2"
  zaikit calc "5 * 12.99 * 1.08"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expr := strings.Join(args, " ")
		v, err := calc.Evaluate(expr)
		if err != nil {
			return err
		}
		app.Printer().KV(expr, calc.Format(v))
		return nil
	},
}
