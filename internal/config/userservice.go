package config

import (
	"os"
	"sync"
	"time"
)

type UserServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

var (
	userServiceConfig *UserServiceConfig
	userServiceOnce   sync.Once
)

// LoadUserServiceConfig reads USER_SERVICE_URL. When it is empty profiles are
// read from the local user_profiles table instead of the user service.
func LoadUserServiceConfig() *UserServiceConfig {
	userServiceOnce.Do(func() {
		userServiceConfig = &UserServiceConfig{
			BaseURL: os.Getenv("USER_SERVICE_URL"),
			Timeout: getDuration("USER_SERVICE_TIMEOUT", 5*time.Second),
		}
	})
	return userServiceConfig
}
