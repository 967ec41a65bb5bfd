package config

import (
	"github.com/spf13/viper"
)

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	IsLambda     bool
	FunctionName string
	Region       string
	Stage        string
}

// DetectServerless reads the Lambda runtime environment
func DetectServerless() ServerlessConfig {
	return detectServerless(newViper())
}

func detectServerless(v *viper.Viper) ServerlessConfig {
	return ServerlessConfig{
		IsLambda:     isRunningInLambda(v),
		FunctionName: v.GetString("AWS_LAMBDA_FUNCTION_NAME"),
		Region:       v.GetString("AWS_REGION"),
		Stage:        v.GetString("STAGE"),
	}
}

// isRunningInLambda detects if the application is running in AWS Lambda
func isRunningInLambda(v *viper.Viper) bool {
	return v.GetString("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// DeploymentMode returns "serverless" inside Lambda and "server" otherwise
func DeploymentMode() string {
	if isRunningInLambda(newViper()) {
		return "serverless"
	}
	return "server"
}

// AdaptForServerless adjusts configuration for Lambda, where CloudWatch
// expects one JSON object per log line
func AdaptForServerless(config *Config, serverless ServerlessConfig) *Config {
	if !serverless.IsLambda {
		return config
	}
	adapted := *config
	adapted.Log.Format = "json"
	if serverless.Stage != "" {
		adapted.Stage = serverless.Stage
	}
	return &adapted
}

// LoadForDeployment loads configuration adapted to the current deployment mode
func LoadForDeployment() (*Config, error) {
	v := newViper()
	config, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	return AdaptForServerless(config, detectServerless(v)), nil
}
