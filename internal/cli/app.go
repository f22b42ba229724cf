// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"os"

	"github.com/gdcc/dataverse-cli-sdk/sdk/config"
	"github.com/gdcc/dataverse-cli-sdk/sdk/utils"
)

// App carries what every command needs: the selected profile and where to write.
type App struct {
	Env string
	Out io.Writer
	Err io.Writer

	Build BuildInfo
}

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func NewApp(build BuildInfo) *App {
	return &App{Out: os.Stdout, Err: os.Stderr, Build: build}
}

// LoadSettings resolves the active profile and environment into viper.
func (a *App) LoadSettings() error {
	return utils.RegisterIniCfgWithViper(a.Env)
}

// Config loads settings and builds the SDK configuration from them.
func (a *App) Config() (config.Config, error) {
	if err := a.LoadSettings(); err != nil {
		return config.Config{}, err
	}
	return utils.LoadConfig()
}
