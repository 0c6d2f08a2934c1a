package core

import (
	"errors"
	"fmt"
)

var (
	ErrReflection       = errors.New("shader reflection failed")
	ErrBinding          = errors.New("uniform binding failed")
	ErrConfiguration    = errors.New("invalid configuration")
	ErrNotInitialized   = errors.New("gpu context is not initialized")
	ErrAssetNotFound    = errors.New("asset not found")
	ErrUnsupportedAsset = errors.New("unsupported asset type")
)

// ReflectionError reports a shader declaration that could not be turned into
// attribute or uniform metadata. Building the program that owns it must fail.
type ReflectionError struct {
	Declaration string
	Reason      string
	Err         error
}

func NewReflectionError(declaration, reason string) *ReflectionError {
	return &ReflectionError{Declaration: declaration, Reason: reason}
}

func (e *ReflectionError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrReflection, e.Reason)
	if e.Declaration != "" {
		msg = fmt.Sprintf("%s: '%s': %s", ErrReflection, e.Declaration, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReflectionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrReflection, e.Err}
	}
	return []error{ErrReflection}
}

// BindingError names the uniform that was missing from, or unknown to, a uniform block.
type BindingError struct {
	Name   string
	Reason string
}

func NewBindingError(name, reason string) *BindingError {
	return &BindingError{Name: name, Reason: reason}
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("%s: uniform '%s': %s", ErrBinding, e.Name, e.Reason)
}

func (e *BindingError) Unwrap() error {
	return ErrBinding
}

// ConfigurationError is raised for invalid scene nodes and invalid engine settings.
type ConfigurationError struct {
	Subject string
	Reason  string
}

func NewConfigurationError(subject, reason string) *ConfigurationError {
	return &ConfigurationError{Subject: subject, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Subject, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
