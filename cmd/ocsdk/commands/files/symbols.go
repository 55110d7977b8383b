package files

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/pkg/apiclient"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols <query>",
	Short: "Find code symbols",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

// SymbolList is a list of symbols for table rendering.
type SymbolList []apiclient.Symbol

// Headers implements TableRenderer.
func (sl SymbolList) Headers() []string {
	return []string{"NAME", "KIND", "PATH"}
}

// Rows implements TableRenderer.
func (sl SymbolList) Rows() [][]string {
	rows := make([][]string, 0, len(sl))
	for _, s := range sl {
		rows = append(rows, []string{s.Name, cmdutil.EmptyOr(s.Kind, "-"), cmdutil.EmptyOr(s.Path, "-")})
	}
	return rows
}

func runSymbols(cmd *cobra.Command, args []string) error {
	return cmdutil.WithClient(cmd, func(client *apiclient.Client) error {
		symbols, err := client.FindSymbols(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to find symbols: %w", err)
		}
		return cmdutil.PrintOutput(os.Stdout, symbols, len(symbols) == 0, "No symbols found.", SymbolList(symbols))
	})
}
