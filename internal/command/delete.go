package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flant/negentropy/sepctl/pkg/log"
	"github.com/flant/negentropy/sepctl/pkg/vsts"
)

func DeleteCMD(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the service endpoint if it exists",
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

			if err := client.DeleteEndpoint(ctx, projectID, endpointID); err != nil {
				return err
			}
			result := &vsts.ToggleResult{
				Action:       vsts.ActionDeleted,
				ProjectID:    projectID,
				EndpointID:   endpointID,
				EndpointName: cfg.Endpoint.Name,
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)

			if err := record(ctx, cfg, result); err != nil {
				log.Warnf(ctx)("service endpoint is deleted but not journaled: %v", err)
			}
			return nil
		},
	}
}
