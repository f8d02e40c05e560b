package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DBTypePostgres, cfg.DBType)
	assert.Equal(t, MediaDriverS3, cfg.MediaDriver)
	assert.Equal(t, "blog-images", cfg.MediaFolder)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.EpochCacheTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.True(t, cfg.RunMigrations)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("DATABASE_REPLICA_URLS", "postgres://r1,postgres://r2")
	t.Setenv("ACCEPTED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"postgres://r1", "postgres://r2"}, cfg.DatabaseReplicaURLs)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("TOKEN_TTL", "forever")

	_, err := Load()
	require.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		DBType:         DBTypeMemory,
		JWTSecret:      "k",
		TokenTTL:       time.Hour,
		MediaDriver:    MediaDriverLocal,
		UploadDir:      "uploads",
		MaxUploadBytes: 1024,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: "JWT_SECRET"},
		{name: "zero ttl", mutate: func(c *Config) { c.TokenTTL = 0 }, wantErr: "TOKEN_TTL"},
		{name: "postgres without url", mutate: func(c *Config) { c.DBType = DBTypePostgres }, wantErr: "DATABASE_URL"},
		{name: "unknown db", mutate: func(c *Config) { c.DBType = "mongo" }, wantErr: "unsupported DB_TYPE"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.MediaDriver = MediaDriverS3 }, wantErr: "S3_BUCKET"},
		{name: "unknown media driver", mutate: func(c *Config) { c.MediaDriver = "cloudinary" }, wantErr: "unsupported MEDIA_DRIVER"},
		{name: "no upload budget", mutate: func(c *Config) { c.MaxUploadBytes = 0 }, wantErr: "MAX_UPLOAD_BYTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type fakeParameterGetter struct {
	value string
	err   error
	names []string
}

func (f *fakeParameterGetter) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.names = append(f.names, aws.ToString(in.Name))
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(f.value)}}, nil
}

func stubParameterGetter(t *testing.T, fake *fakeParameterGetter) {
	t.Helper()
	orig := newParameterGetter
	newParameterGetter = func(context.Context, string) (parameterGetter, error) { return fake, nil }
	t.Cleanup(func() { newParameterGetter = orig })
}

func TestResolveSecrets_FromSSM(t *testing.T) {
	fake := &fakeParameterGetter{value: "from-ssm"}
	stubParameterGetter(t, fake)

	cfg := &Config{JWTSecretSSMParameter: "/blog/jwt-secret"}
	require.NoError(t, ResolveSecrets(context.Background(), cfg))

	assert.Equal(t, "from-ssm", cfg.JWTSecret)
	assert.Equal(t, []string{"/blog/jwt-secret"}, fake.names)
}

func TestResolveSecrets_ExplicitSecretWins(t *testing.T) {
	fake := &fakeParameterGetter{value: "from-ssm"}
	stubParameterGetter(t, fake)

	cfg := &Config{JWTSecret: "explicit", JWTSecretSSMParameter: "/blog/jwt-secret"}
	require.NoError(t, ResolveSecrets(context.Background(), cfg))

	assert.Equal(t, "explicit", cfg.JWTSecret)
	assert.Empty(t, fake.names)
}

func TestResolveSecrets_Errors(t *testing.T) {
	stubParameterGetter(t, &fakeParameterGetter{err: errors.New("access denied")})
	err := ResolveSecrets(context.Background(), &Config{JWTSecretSSMParameter: "/p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")

	stubParameterGetter(t, &fakeParameterGetter{value: ""})
	err = ResolveSecrets(context.Background(), &Config{JWTSecretSSMParameter: "/p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
