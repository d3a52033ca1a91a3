// Package command implements sepctl commands.
package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flant/negentropy/sepctl/pkg/config"
	"github.com/flant/negentropy/sepctl/pkg/journal"
	"github.com/flant/negentropy/sepctl/pkg/log"
	"github.com/flant/negentropy/sepctl/pkg/secret"
	"github.com/flant/negentropy/sepctl/pkg/vsts"
)

const DebugFlagName = "debug"

func NewRootCMD() *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:   "sepctl",
		Short: "Manage a service endpoint of a VSTS project",
		Long: `Create, delete or toggle a named service endpoint of a VSTS project.

Settings are read from a SepctlConfig document (--config) and can be
overridden by flags or environment variables:
  SEPCTL_CONFIG, SEPCTL_BASE_URL, SEPCTL_PROJECT, SEPCTL_ACCESS_TOKEN,
  SEPCTL_VAULT_ADDRESS, SEPCTL_VAULT_PATH, SEPCTL_VAULT_FIELD,
  SEPCTL_ENDPOINT_NAME, SEPCTL_PROVIDER, SEPCTL_ENDPOINT_URL,
  SEPCTL_ENDPOINT_TOKEN, SEPCTL_USERNAME, SEPCTL_PASSWORD,
  SEPCTL_JOURNAL, SEPCTL_DEBUG.
Vault client settings also honor VAULT_ADDR and VAULT_TOKEN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Setup(cmd.ErrOrStderr(), v.GetBool(DebugFlagName))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(config.ConfigKey, "c", "", "path to a SepctlConfig document")
	flags.String(config.BaseURLKey, "", "account URL, e.g. https://account.visualstudio.com/")
	flags.StringP(config.ProjectKey, "p", "", "project name")
	flags.String(config.AccessTokenKey, "", "personal access token")
	flags.String(config.VaultAddressKey, "", "vault address")
	flags.String(config.VaultPathKey, "", "vault KV secret holding the personal access token")
	flags.String(config.VaultFieldKey, "", "field of the vault secret, default: "+config.DefaultVaultField)
	flags.StringP(config.EndpointNameKey, "n", "", "service endpoint name")
	flags.String(config.ProviderKey, "", "service endpoint provider: appcenter | sonarqube, default: "+config.DefaultProvider)
	flags.String(config.EndpointURLKey, "", "server URL of the sonarqube provider")
	flags.String(config.EndpointTokenKey, "", "API token of the appcenter provider")
	flags.String(config.UsernameKey, "", "user name of the sonarqube provider")
	flags.String(config.PasswordKey, "", "password of the sonarqube provider")
	flags.String(config.JournalKey, "", "sqlite journal recording created and deleted endpoints")
	flags.Bool(DebugFlagName, false, "enable debug logging")
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(
		ToggleCMD(v),
		StatusCMD(v),
		CreateCMD(v),
		DeleteCMD(v),
		HistoryCMD(v),
	)
	return rootCmd
}

// loadConfig returns the assembled config checked for remote API settings.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v.GetString(config.ConfigKey), v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newClient(ctx context.Context, cfg *config.Config) (*vsts.Client, error) {
	source, err := secret.NewTokenSource(cfg)
	if err != nil {
		return nil, err
	}
	token, err := source.Token()
	if err != nil {
		return nil, err
	}
	log.Debugf(ctx)("use account %s", cfg.BaseURL)
	return vsts.NewClientForAccount(cfg.BaseURL, token)
}

// record appends the result to the journal if it is configured.
func record(ctx context.Context, cfg *config.Config, result *vsts.ToggleResult) error {
	if cfg.Journal == "" {
		return nil
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	return j.Record(ctx, journal.Entry{
		Action:       string(result.Action),
		Project:      cfg.Project,
		ProjectID:    result.ProjectID.String(),
		EndpointName: result.EndpointName,
		EndpointID:   result.EndpointID.String(),
	})
}

func openJournal(path string) (*journal.Journal, error) {
	j, err := journal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal '%s': %w", path, err)
	}
	if err := j.Migrate(); err != nil {
		j.Close()
		return nil, fmt.Errorf("migrate journal '%s': %w", path, err)
	}
	return j, nil
}
