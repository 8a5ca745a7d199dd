package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the app's secrets in the OS keychain.
	KeyringService = "jobtier"
)

var ErrEmptyAccount = errors.New("keyring account name is empty")

func GetRedisPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) == "" {
		return "", ErrEmptyAccount
	}
	pw, err := keyring.Get(KeyringService, keyringAccount)
	if err != nil {
		return "", fmt.Errorf("redis password not found in keychain: %w", err)
	}
	if strings.TrimSpace(pw) == "" {
		return "", errors.New("redis password in keychain is empty")
	}
	return pw, nil
}

func SetRedisPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return ErrEmptyAccount
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteRedisPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return ErrEmptyAccount
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

// RedisKeyringAccount names the keychain entry for a redis endpoint.
func RedisKeyringAccount(address string, db int) string {
	return fmt.Sprintf("jobtier:redis:%s/%d", strings.TrimSpace(address), db)
}
