package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRolesCmd(root *rootOptions) *cobra.Command {
	var withSkills bool

	cmd := &cobra.Command{
		Use:   "roles",
		Short: "List the roles in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, closeService, err := newService(root, false)
			if err != nil {
				return err
			}
			defer closeService()

			out := cmd.OutOrStdout()
			if !withSkills {
				for _, role := range service.Roles() {
					fmt.Fprintln(out, role.Name)
				}
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ROLE\tSKILLS")
			for _, role := range service.Roles() {
				skills, err := service.RoleSkills(role.Name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\n", role.Name, strings.Join(skills.Sorted(), ", "))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&withSkills, "skills", false, "Show the skills extracted from each role description")

	return cmd
}
