// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package utils

const (
	IniName            = ".dvcli.ini"
	CurrentEnvironment = "current_environment"
	UpdatedEnvKey      = "updated_environment"

	DataverseURL        = "dataverse_url"
	DataverseToken      = "dataverse_token"
	TransferConcurrency = "transfer_concurrency"
	OrphanPolicy        = "orphan_policy"
	StorageURLRewrite   = "storage_url_rewrite"
	HTTPTimeout         = "http_timeout"

	AwsAccessKeyID     = "aws_access_key_id"
	AwsSecretAccessKey = "aws_secret_access_key"
	AwsSessionToken    = "aws_session_token"
	AwsRegion          = "aws_region"
	AwsEndpointURL     = "aws_endpoint_url"

	LogLevelEnv = "DVCLI_LOG_LEVEL"

	// written by --gen next to the working directory
	ExampleBodyFile = "body.json"
)
