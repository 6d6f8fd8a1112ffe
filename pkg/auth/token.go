package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
)

const (
	// TokenFile is where `taskdump auth` stores the remote API key, relative
	// to the XDG config directory.
	TokenFile = "token.json"

	// TokenType is the Authorization scheme expected by the remote task API.
	TokenType = "Token"

	xdgAppName = "taskdump"
)

// TokenSource returns a static token source for an API key. The resulting
// Authorization header is "Token <apiKey>".
func TokenSource(apiKey string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: apiKey,
		TokenType:   TokenType,
	})
}

// NewTransport wraps base so that every request carries the API key.
// A nil base uses http.DefaultTransport.
func NewTransport(apiKey string, base http.RoundTripper) http.RoundTripper {
	return &oauth2.Transport{
		Source: TokenSource(apiKey),
		Base:   base,
	}
}

// LoadAPIKey reads the API key stored in the token file. It returns "" and
// no error when the file does not exist.
func LoadAPIKey() (string, error) {
	path, err := TokenPath()
	if err != nil {
		return "", err
	}
	tok, err := tokenFromFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return tok.AccessToken, nil
}

// SaveAPIKey stores the API key in the token file, readable by the owner only.
func SaveAPIKey(apiKey string) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", fmt.Errorf("api key must not be empty")
	}
	path, err := TokenPath()
	if err != nil {
		return "", err
	}
	if err := saveToken(path, &oauth2.Token{AccessToken: apiKey, TokenType: TokenType}); err != nil {
		return "", err
	}
	return path, nil
}

// TokenPath returns the location of the token file.
func TokenPath() (string, error) {
	xdgConfigBase, err := GetXdgHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgConfigBase, TokenFile), nil
}

// tokenFromFile reads an oauth2.Token from a JSON file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

// saveToken saves an oauth2.Token to a JSON file.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache api token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// GetXdgHome returns the configuration directory of taskdump. XDG_CONFIG_HOME
// is honoured when set.
func GetXdgHome() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, xdgAppName), nil
	}
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName), nil
}
