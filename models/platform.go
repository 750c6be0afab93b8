package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/go-playground/validator"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

func (p Platform) IsValid() bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return true
	}
	return false
}

func (p *Platform) Scan(value interface{}) error {
	s, err := scanString(value)
	if err != nil {
		return err
	}
	*p = Platform(s)
	return nil
}

func (p Platform) Value() (driver.Value, error) {
	return string(p), nil
}

func ValidatePlatform(fl validator.FieldLevel) bool {
	return Platform(fl.Field().String()).IsValid()
}

// scanString accepts the text representations drivers hand back for varchar columns.
func scanString(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported type %T for enum column", value)
	}
}
