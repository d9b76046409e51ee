package cli

import "github.com/spf13/cobra"

func (a *app) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List system message presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			comps, err := a.components()
			if err != nil {
				return err
			}
			for _, p := range comps.Presets {
				cmd.Printf("%s\n    %s\n", p.Name, p.SystemMessage)
			}
			return nil
		},
	}
}
