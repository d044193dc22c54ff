package twitter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// DefaultCredentialsSecretID is the Secrets Manager secret holding the X API
// app credentials.
const DefaultCredentialsSecretID = "engagemint-x-credentials"

// Credentials are the app key/secret pair used for app-only authentication.
type Credentials struct {
	AppKey    string `json:"X_API_KEY"`
	AppSecret string `json:"X_API_SECRET"`
}

// FetchCredentials reads the X API credentials from Secrets Manager.
func FetchCredentials(ctx context.Context, client *secretsmanager.Client, secretID string) (Credentials, error) {
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to fetch X API credentials: %w", err)
	}
	if result.SecretString == nil {
		return Credentials{}, fmt.Errorf("secret %q has no string value", secretID)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(*result.SecretString), &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse X API credentials: %w", err)
	}
	if creds.AppKey == "" || creds.AppSecret == "" {
		return Credentials{}, fmt.Errorf("secret %q is missing X_API_KEY or X_API_SECRET", secretID)
	}
	return creds, nil
}
