package insights

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"compras/internal/core"
)

// Settings are the explicit presentation and rule parameters of the
// engine.
type Settings struct {
	Currency   string      `yaml:"currency" validate:"required,max=4"`
	Locale     core.Locale `yaml:"locale" validate:"oneof=en es"`
	Thresholds Thresholds  `yaml:"thresholds"`
}

func DefaultSettings() Settings {
	return Settings{
		Currency:   "$",
		Locale:     core.LocaleES,
		Thresholds: DefaultThresholds(),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings after defaults have been merged in.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid insight settings: %s failed %q", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid insight settings: %w", err)
	}
	return nil
}

// LoadSettings reads a YAML overrides file on top of base. Keys absent
// from the file keep their base value.
//
// Example file:
//
//	currency: "€"
//	locale: en
//	thresholds:
//	  spike_factor: 2
//	  repeated_product_count: 4
func LoadSettings(path string, base Settings) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read insight settings: %w", err)
	}
	out := base
	if err := yaml.Unmarshal(data, &out); err != nil {
		return base, fmt.Errorf("parse insight settings %s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return base, err
	}
	return out, nil
}
