package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flant/negentropy/sepctl/pkg/log"
)

func ToggleCMD(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Create the service endpoint if it is absent, delete it otherwise",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			cred, err := credential(cfg.Endpoint)
			if err != nil {
				return err
			}
			client, err := newClient(ctx, cfg)
			if err != nil {
				return err
			}

			result, err := client.Toggle(ctx, cfg.Project, cfg.Endpoint.Name, cred)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)

			if err := record(ctx, cfg, result); err != nil {
				log.Warnf(ctx)("service endpoint is %s but not journaled: %v", result.Action, err)
			}
			return nil
		},
	}
}
