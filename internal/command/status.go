package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func StatusCMD(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the id of the service endpoint or report it is absent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			client, err := newClient(ctx, cfg)
			if err != nil {
				return err
			}

			projectID, err := client.ResolveProjectID(ctx, cfg.Project)
			if err != nil {
				return err
			}
			endpointID, found, err := client.FindEndpointID(ctx, projectID, cfg.Endpoint.Name)
			if err != nil {
				return err
			}

			if !found {
				fmt.Fprintf(cmd.OutOrStdout(), "Service endpoint '%s' is absent\n", cfg.Endpoint.Name)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Service endpoint '%s' exists with id: %s\n", cfg.Endpoint.Name, endpointID)
			return nil
		},
	}
}
