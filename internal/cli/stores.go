package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) storesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stores",
		Short: "List, inspect and delete stores",
	}

	var asJSON bool

	list := &cobra.Command{
		Use:   "list",
		Short: "List stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			comps, err := a.components()
			if err != nil {
				return err
			}
			names, err := comps.Stores.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, names)
			}
			if len(names) == 0 {
				cmd.Println("No stores found.")
				return nil
			}
			for _, name := range names {
				cmd.Println(name)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	info := &cobra.Command{
		Use:   "info [store]",
		Short: "Show store metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := a.components()
			if err != nil {
				return err
			}
			info, err := comps.Stores.Info(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
		},
	}

	del := &cobra.Command{
		Use:   "delete [store]",
		Short: "Delete a store and its index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := a.components()
			if err != nil {
				return err
			}
			if err := comps.Stores.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("Deleted store %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, info, del)
	return cmd
}
