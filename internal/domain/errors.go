package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuery             = errors.New("query is empty")
	ErrKnowledgeBaseLoad      = errors.New("knowledge base load failed")
	ErrKnowledgeBaseNotLoaded = errors.New("knowledge base not loaded")
	ErrExternalService        = errors.New("external service failed")
)

// LoadError reports a knowledge source that could not be read.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load knowledge base from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrKnowledgeBaseLoad }

// ExternalServiceError reports a failed fallback call.
type ExternalServiceError struct {
	Provider string
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s fallback: %v", e.Provider, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func (e *ExternalServiceError) Is(target error) bool { return target == ErrExternalService }
