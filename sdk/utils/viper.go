// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/gdcc/dataverse-cli-sdk/sdk/config"
)

// Settings holds all logical keys. Tags:
// - vkey: Viper key
// - env: canonical env name (UPPER_SNAKE). If empty, derived from vkey
// - persist: "true" to write the key into the INI
// - default: optional default to set if key is unset
// - secret: "true" if sensitive, never printed
// - bind: "false" to NOT bind from env (we still can set defaults)
type Settings struct {
	DataverseURL        string `vkey:"dataverse_url"        env:"DVCLI_URL"                 persist:"true"`
	DataverseToken      string `vkey:"dataverse_token"      env:"DVCLI_TOKEN"               persist:"true" secret:"true"`
	TransferConcurrency string `vkey:"transfer_concurrency" env:"DVCLI_CONCURRENCY"         persist:"true" default:"4"`
	OrphanPolicy        string `vkey:"orphan_policy"        env:"DVCLI_ORPHAN_POLICY"       persist:"true" default:"keep"`
	StorageURLRewrite   string `vkey:"storage_url_rewrite"  env:"DVCLI_STORAGE_URL_REWRITE" persist:"true" default:"http://localstack=http://localhost"`
	HTTPTimeout         string `vkey:"http_timeout"         env:"DVCLI_TIMEOUT"             persist:"true"`

	AwsAccessKeyID     string `vkey:"aws_access_key_id"     env:"AWS_ACCESS_KEY_ID"     persist:"true" secret:"true"`
	AwsSecretAccessKey string `vkey:"aws_secret_access_key" env:"AWS_SECRET_ACCESS_KEY" persist:"true" secret:"true"`
	AwsSessionToken    string `vkey:"aws_session_token"     env:"AWS_SESSION_TOKEN"     persist:"true" secret:"true"`
	AwsRegion          string `vkey:"aws_region"            env:"AWS_REGION"            persist:"true"`
	AwsEndpointURL     string `vkey:"aws_endpoint_url"      env:"AWS_ENDPOINT_URL"      persist:"true"`

	UpdatedEnvironment string `vkey:"updated_environment" persist:"false" bind:"false"`
	CurrentEnvironment string `vkey:"current_environment" env:"DVCLI_ENV" persist:"false"`
}

type settingField struct {
	key     string
	env     string
	persist bool
	bind    bool
	def     string
	secret  bool
}

func settingFields() []settingField {
	rt := reflect.TypeOf(Settings{})
	fields := make([]settingField, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		key := f.Tag.Get("vkey")
		if key == "" {
			continue
		}
		env := f.Tag.Get("env")
		if env == "" {
			env = strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
		fields = append(fields, settingField{
			key:     key,
			env:     env,
			persist: f.Tag.Get("persist") == "true",
			bind:    !strings.EqualFold(f.Tag.Get("bind"), "false"),
			def:     f.Tag.Get("default"),
			secret:  f.Tag.Get("secret") == "true",
		})
	}
	return fields
}

// IsSecret reports whether a key must not be echoed back to the user.
func IsSecret(key string) bool {
	for _, f := range settingFields() {
		if f.key == key {
			return f.secret
		}
	}
	return false
}

func getIniPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, IniName)
}

// resolveEnvName: --env > "default"
func resolveEnvName(optionalEnv ...string) string {
	if len(optionalEnv) > 0 && optionalEnv[0] != "" && strings.ToLower(optionalEnv[0]) != "null" {
		return optionalEnv[0]
	}
	return "default"
}

// BindEnvFromStruct binds every Settings field to its env var and default.
func BindEnvFromStruct() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, f := range settingFields() {
		if f.bind {
			_ = viper.BindEnv(f.key, f.env)
		}
		if f.def != "" {
			viper.SetDefault(f.key, f.def)
		}
	}
}

func fillSection(sec *ini.Section) {
	for _, f := range settingFields() {
		if !f.persist {
			continue
		}
		if val := viper.GetString(f.key); val != "" {
			sec.Key(f.key).SetValue(val)
		}
	}
	sec.Key(UpdatedEnvKey).SetValue(time.Now().UTC().Format(time.RFC3339))
}

// WriteIniFromStruct writes a new INI with only fields marked persist:"true".
func WriteIniFromStruct(iniPath, envName string) error {
	cfg := ini.Empty()
	cfg.Section("DEFAULT").Key(CurrentEnvironment).SetValue(envName)
	fillSection(cfg.Section(envName))
	return cfg.SaveTo(iniPath)
}

// UpdateIniFromStruct updates or creates the env section from current Viper values.
func UpdateIniFromStruct(iniPath, envName string) error {
	cfg, err := ini.Load(iniPath)
	if err != nil {
		return WriteIniFromStruct(iniPath, envName)
	}
	fillSection(cfg.Section(envName))

	if !cfg.Section("DEFAULT").HasKey(CurrentEnvironment) {
		cfg.Section("DEFAULT").Key(CurrentEnvironment).SetValue(envName)
	}
	return cfg.SaveTo(iniPath)
}

// loadIniSectionIntoViper merges [DEFAULT] and [env] into the config layer,
// so env vars still override on Get().
func loadIniSectionIntoViper(cfg *ini.File, env string) error {
	def := cfg.Section("DEFAULT")
	selected := def
	switch {
	case env != "" && cfg.HasSection(env):
		selected = cfg.Section(env)
		Logger().Debug("using profile", "env", env)
	case env == "" || strings.EqualFold(env, "DEFAULT"):
		Logger().Debug("using profile", "env", "DEFAULT")
	default:
		Logger().Warn("profile not found, falling back to [DEFAULT]", "env", env)
	}

	merged := make(map[string]any)
	for _, k := range def.Keys() {
		merged[k.Name()] = k.Value()
	}
	if selected != def {
		for _, k := range selected.Keys() {
			merged[k.Name()] = k.Value()
		}
	}
	return viper.MergeConfigMap(merged)
}

// RegisterIniCfgWithViper:
// 1) bind ENV from struct (live)
// 2) load the INI when present, otherwise run on env vars alone
// 3) load the active section into Viper and set current_environment
func RegisterIniCfgWithViper(optionalEnv ...string) error {
	BindEnvFromStruct()

	cfg, err := ini.Load(getIniPath())
	if err != nil {
		Logger().Debug("no profile file, using environment only", "path", getIniPath())
		viper.Set(CurrentEnvironment, resolveEnvName(optionalEnv...))
		return nil
	}

	// active env: --env > DVCLI_ENV > DEFAULT.current_environment > default
	env := resolveEnvName(optionalEnv...)
	if env == "default" {
		if v := os.Getenv("DVCLI_ENV"); v != "" {
			env = v
		} else if v := cfg.Section("DEFAULT").Key(CurrentEnvironment).String(); v != "" {
			env = v
		}
	}

	if err := loadIniSectionIntoViper(cfg, env); err != nil {
		return fmt.Errorf("failed to load INI into viper: %w", err)
	}
	viper.Set(CurrentEnvironment, env)
	return nil
}

// SaveProfile persists the current settings under the given profile name and
// makes it the active one.
func SaveProfile(name string) error {
	if name == "" {
		return fmt.Errorf("profile name is required")
	}
	iniPath := getIniPath()
	if err := UpdateIniFromStruct(iniPath, name); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", name, err)
	}
	cfg, err := ini.Load(iniPath)
	if err != nil {
		return fmt.Errorf("profile saved but cannot reload: %w", err)
	}
	cfg.Section("DEFAULT").Key(CurrentEnvironment).SetValue(name)
	return cfg.SaveTo(iniPath)
}

// LoadConfig turns the resolved Viper values into the SDK configuration.
func LoadConfig() (config.Config, error) {
	conf := config.Config{
		Core: config.CoreConfig{
			BaseURL:  strings.TrimRight(viper.GetString(DataverseURL), "/"),
			APIToken: viper.GetString(DataverseToken),
		},
		S3: config.S3Config{
			AccessKey:   viper.GetString(AwsAccessKeyID),
			SecretKey:   viper.GetString(AwsSecretAccessKey),
			AccessToken: viper.GetString(AwsSessionToken),
			Region:      viper.GetString(AwsRegion),
			EndpointURL: viper.GetString(AwsEndpointURL),
		},
		Transfer: config.DefaultTransferConfig(),
	}
	if conf.Core.BaseURL == "" {
		return conf, fmt.Errorf("missing %s: set DVCLI_URL or run 'dvcli config set-profile'", DataverseURL)
	}

	if v := strings.TrimSpace(viper.GetString(TransferConcurrency)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return conf, fmt.Errorf("invalid %s %q: expected a non-negative integer", TransferConcurrency, v)
		}
		conf.Transfer.Concurrency = n
	}

	policy, err := config.ParseOrphanPolicy(viper.GetString(OrphanPolicy))
	if err != nil {
		return conf, err
	}
	conf.Transfer.OrphanPolicy = policy

	rules, err := config.ParseRewriteRules(viper.GetString(StorageURLRewrite))
	if err != nil {
		return conf, err
	}
	conf.Transfer.StorageURLRewrite = rules

	if v := strings.TrimSpace(viper.GetString(HTTPTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return conf, fmt.Errorf("invalid %s %q: %w", HTTPTimeout, v, err)
		}
		conf.Transfer.Timeout = d
	}

	return conf, nil
}
