package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flant/negentropy/sepctl/pkg/config"
)

const LimitFlagName = "limit"

func HistoryCMD(v *viper.Viper) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled creations and deletions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v.GetString(config.ConfigKey), v)
			if err != nil {
				return err
			}
			if cfg.Journal == "" {
				return fmt.Errorf("journal is not set: use --%s or journal in the config", config.JournalKey)
			}

			limit, err := cmd.Flags().GetInt(LimitFlagName)
			if err != nil {
				return err
			}

			j, err := openJournal(cfg.Journal)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n",
					e.RecordedAt.UTC().Format(time.RFC3339), e.Action, e.Project, e.EndpointName, e.EndpointID)
			}
			return nil
		},
	}
	historyCmd.Flags().Int(LimitFlagName, 20, "maximum number of entries, 0 for all")
	return historyCmd
}
