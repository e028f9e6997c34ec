package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"expertcof/internal/preferences"
)

func newThemeCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Exibir ou alterar o tema",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(rt.Out, rt.Session.Theme())
				return nil
			}
			if strings.EqualFold(args[0], "toggle") {
				next, err := rt.Session.ToggleTheme()
				if err != nil {
					return fmt.Errorf("save theme: %w", err)
				}
				fmt.Fprintln(rt.Out, next)
				return nil
			}
			theme, err := preferences.ParseTheme(args[0])
			if err != nil {
				return errors.New("Tema deve ser light, dark ou toggle.")
			}
			if err := rt.Session.SetTheme(theme); err != nil {
				return fmt.Errorf("save theme: %w", err)
			}
			fmt.Fprintln(rt.Out, theme)
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Exibir a versão",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cof %s\n", Version)
		},
	}
}
