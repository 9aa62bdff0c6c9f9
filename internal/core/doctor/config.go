package doctor

import (
	"context"
	"errors"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/tegbar/internal/core/config"
)

// ConfigCheck reports whether a config file is present and whether the effective
// configuration passes deep validation.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

// NewConfigCheck creates a config check for the file at path.
func NewConfigCheck(cfg *config.Config, path string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: path}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if _, err := os.Stat(c.path); err != nil {
		result.add("config file", StatusWarn, "not found, using defaults ("+c.path+")")
	} else {
		result.add("config file", StatusPass, c.path)
	}

	err := c.cfg.ValidateDeep()
	if err == nil {
		result.add("settings", StatusPass, "")
		return result
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		result.add("settings", StatusFail, err.Error())
		return result
	}
	for _, fe := range fieldErrs {
		result.add(fe.Field, StatusFail, fe.Err.Error())
	}
	return result
}
