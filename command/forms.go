package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"volunteerhub/services"
)

func formsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Feedback and verification forms",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the effective form catalog as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forms, err := services.LoadForms(a.cfg.FormsFile)
			if err != nil {
				return fmt.Errorf("failed to load forms: %w", err)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(forms); err != nil {
				return err
			}
			return enc.Close()
		},
	})
	return cmd
}
