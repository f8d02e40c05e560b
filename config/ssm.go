package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type parameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// newParameterGetter is a seam for tests.
var newParameterGetter = func(ctx context.Context, region string) (parameterGetter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return ssm.NewFromConfig(awsCfg), nil
}

// ResolveSecrets fills the signing secret from SSM Parameter Store when it
// was not given directly. An explicit JWT_SECRET always wins.
func ResolveSecrets(ctx context.Context, c *Config) error {
	if c.JWTSecret != "" || c.JWTSecretSSMParameter == "" {
		return nil
	}

	client, err := newParameterGetter(ctx, c.AWSRegion)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(c.JWTSecretSSMParameter),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("get parameter %s: %w", c.JWTSecretSSMParameter, err)
	}
	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return fmt.Errorf("parameter %s is empty", c.JWTSecretSSMParameter)
	}

	c.JWTSecret = aws.ToString(out.Parameter.Value)
	return nil
}
