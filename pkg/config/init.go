package config

import (
	"fmt"
	"os"
)

// InitConfig writes a default config file to the default location and
// returns its path. An existing file is kept unless force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// InitConfigToPath writes a default config file to path.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s\n\n"+
			"Use --force to overwrite it", path)
	}
	return SaveConfig(GetDefaultConfig(), path)
}
