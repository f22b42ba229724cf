// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gdcc/dataverse-cli-sdk/internal/cli"
	"github.com/gdcc/dataverse-cli-sdk/sdk/config"
	"github.com/gdcc/dataverse-cli-sdk/sdk/utils"
)

func NewConfigCommand(a *cli.App) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage connection profiles",
	}
	configCmd.AddCommand(NewSetProfileCommand(a), NewShowConfigCommand(a))
	return configCmd
}

func NewSetProfileCommand(a *cli.App) *cobra.Command {
	var url, token string

	setCmd := &cobra.Command{
		Use:   "set-profile <name>",
		Short: "Save the current settings as a named profile and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.LoadSettings(); err != nil {
				return err
			}
			if url != "" {
				viper.Set(utils.DataverseURL, url)
			}
			if token != "" {
				viper.Set(utils.DataverseToken, token)
			}
			if viper.GetString(utils.DataverseURL) == "" {
				return fmt.Errorf("no Dataverse url to save, pass --url or set DVCLI_URL")
			}
			if err := utils.SaveProfile(args[0]); err != nil {
				return err
			}
			printSuccess(a.Out, "Profile %s saved and activated", args[0])
			return nil
		},
	}
	setCmd.Flags().StringVar(&url, "url", "", "Dataverse base url")
	setCmd.Flags().StringVar(&token, "token", "", "Dataverse API token")
	return setCmd
}

func NewShowConfigCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration, secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := a.Config()
			if err != nil {
				return err
			}
			printResponse(a, describeConfig(conf))
			return nil
		},
	}
}

func describeConfig(conf config.Config) map[string]any {
	mask := func(key, v string) string {
		if v != "" && utils.IsSecret(key) {
			return "********"
		}
		return v
	}
	timeout := "none"
	if conf.Transfer.Timeout > 0 {
		timeout = conf.Transfer.Timeout.Round(time.Millisecond).String()
	}
	return map[string]any{
		"profile":                 viper.GetString(utils.CurrentEnvironment),
		utils.DataverseURL:        conf.Core.BaseURL,
		utils.DataverseToken:      mask(utils.DataverseToken, conf.Core.APIToken),
		utils.TransferConcurrency: conf.Transfer.Concurrency,
		utils.OrphanPolicy:        string(conf.Transfer.OrphanPolicy),
		utils.StorageURLRewrite:   config.FormatRewriteRules(conf.Transfer.StorageURLRewrite),
		utils.HTTPTimeout:         timeout,
		utils.AwsAccessKeyID:      mask(utils.AwsAccessKeyID, conf.S3.AccessKey),
		utils.AwsSecretAccessKey:  mask(utils.AwsSecretAccessKey, conf.S3.SecretKey),
		utils.AwsRegion:           conf.S3.Region,
		utils.AwsEndpointURL:      conf.S3.EndpointURL,
	}
}
