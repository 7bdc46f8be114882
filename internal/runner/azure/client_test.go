package azure

import (
	"context"
	"testing"
	"time"
)

func TestNewClient_RequiresAuth(t *testing.T) {
	_, err := NewClient(ClientOptions{Endpoint: "https://example.openai.azure.com"})
	if err == nil {
		t.Error("expected error when neither APIKey nor Auth is set")
	}
}

func TestNewClientWithAuth_UsesProviderToken(t *testing.T) {
	auth := NewAzureADAuth(func(ctx context.Context) (*TokenCredential, error) {
		return &TokenCredential{Token: "ad-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
	})

	client, err := NewClientWithAuth(ClientOptions{Endpoint: "https://example.openai.azure.com"}, auth)
	if err != nil {
		t.Fatalf("NewClientWithAuth: %v", err)
	}
	if client.lastToken != "ad-token" {
		t.Errorf("lastToken = %q, want ad-token", client.lastToken)
	}
}

func TestClient_RefreshCredentialRotatesOnChange(t *testing.T) {
	token := "token-1"
	auth := NewAzureADAuth(func(ctx context.Context) (*TokenCredential, error) {
		return &TokenCredential{Token: token, ExpiresAt: time.Now().Add(time.Hour)}, nil
	})

	client, err := NewClientWithAuth(ClientOptions{Endpoint: "https://example.openai.azure.com"}, auth)
	if err != nil {
		t.Fatalf("NewClientWithAuth: %v", err)
	}

	// force a re-resolve by expiring the cached AzureADAuth token
	auth.mu.Lock()
	auth.token.ExpiresAt = time.Now().Add(-time.Minute)
	auth.mu.Unlock()
	token = "token-2"

	if err := client.refreshCredential(context.Background()); err != nil {
		t.Fatalf("refreshCredential: %v", err)
	}
	if client.lastToken != "token-2" {
		t.Errorf("lastToken = %q, want token-2", client.lastToken)
	}
}
