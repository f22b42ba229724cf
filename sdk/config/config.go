// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Config is everything the SDK needs; viper and INI handling live in utils.
type Config struct {
	Core     CoreConfig
	S3       S3Config
	Transfer TransferConfig
}

type CoreConfig struct {
	BaseURL  string
	APIToken string
}

type S3Config struct {
	AccessKey   string
	SecretKey   string
	AccessToken string
	Region      string
	EndpointURL string
}

// Configured reports whether static credentials were provided.
func (c S3Config) Configured() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

type OrphanPolicy string

const (
	OrphanKeep   OrphanPolicy = "keep"
	OrphanDelete OrphanPolicy = "delete"
)

func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch p := OrphanPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return OrphanKeep, nil
	case OrphanKeep, OrphanDelete:
		return p, nil
	}
	return "", fmt.Errorf("unknown orphan policy %q (want %q or %q)", s, OrphanKeep, OrphanDelete)
}

const DefaultConcurrency = 4

type TransferConfig struct {
	// Concurrency bounds the number of files in flight; 0 means unbounded.
	Concurrency  int
	OrphanPolicy OrphanPolicy
	// StorageURLRewrite maps storage URL prefixes to replacements, applied to
	// upload tickets before the PUT.
	StorageURLRewrite map[string]string
	// Timeout for a single HTTP exchange, 0 disables it.
	Timeout time.Duration
}

func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		Concurrency:  DefaultConcurrency,
		OrphanPolicy: OrphanKeep,
		StorageURLRewrite: map[string]string{
			"http://localstack": "http://localhost",
		},
	}
}

// RewriteStorageURL applies the longest matching prefix rule.
func (c TransferConfig) RewriteStorageURL(url string) string {
	best := ""
	for prefix := range c.StorageURLRewrite {
		if strings.HasPrefix(url, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return url
	}
	return c.StorageURLRewrite[best] + strings.TrimPrefix(url, best)
}

// ParseRewriteRules reads "from=to" pairs separated by commas.
func ParseRewriteRules(s string) (map[string]string, error) {
	rules := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		from, to, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(from) == "" {
			return nil, fmt.Errorf("invalid storage url rewrite %q, expected from=to", pair)
		}
		rules[strings.TrimSpace(from)] = strings.TrimSpace(to)
	}
	return rules, nil
}

// FormatRewriteRules is the inverse of ParseRewriteRules, with sorted keys.
func FormatRewriteRules(rules map[string]string) string {
	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+rules[k])
	}
	return strings.Join(pairs, ",")
}
