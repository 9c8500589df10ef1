package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicy é a causa de todo ConfigurationError.
var ErrInvalidPolicy = errors.New("ratelimit: invalid policy")

// ConfigurationError indica uma política inválida (estratégia desconhecida,
// janela ou limite não positivos). Aparece no registro, nunca na admissão.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ratelimit: invalid policy %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrInvalidPolicy }
