package constants

const (
	AppName      = "token-factory"
	NetworksFile = "networks.json"
	KeyFile      = "operator_key.json"
	DatabaseFile = "factory.db"

	SchemaV1      = 1
	FilePerm      = 0o600
	DirectoryPerm = 0o700

	// EnvVar selects the config subfolder: local, develop or empty for prod.
	EnvVar = "TF_ENV"

	// AAD binding the encrypted operator key to this application.
	KeyAAD = "token-factory:operator-key:v1"
)
