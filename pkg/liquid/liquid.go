package liquid

import (
	"context"
	"fmt"
	"time"

	"github.com/osteele/liquid"
)

// Rendering limits. Template strings are tenant-supplied, so runaway or
// hostile templates must not stall the calling request.
const (
	DefaultRenderTimeout   = 5 * time.Second
	DefaultMaxTemplateSize = 100 * 1024 // 100KB
)

// Engine wraps the Liquid engine with timeout and size protection. Missing
// variables render as empty strings, which is the contract callers rely on
// for optional context keys.
type Engine struct {
	timeout time.Duration
	maxSize int
	engine  *liquid.Engine
}

// NewEngine creates an engine with default limits.
func NewEngine() *Engine {
	return &Engine{
		timeout: DefaultRenderTimeout,
		maxSize: DefaultMaxTemplateSize,
		engine:  liquid.NewEngine(),
	}
}

// NewEngineWithOptions creates an engine with custom limits.
func NewEngineWithOptions(timeout time.Duration, maxSize int) *Engine {
	return &Engine{
		timeout: timeout,
		maxSize: maxSize,
		engine:  liquid.NewEngine(),
	}
}

// Render evaluates a Liquid template string against the data context.
func (e *Engine) Render(content string, data map[string]interface{}) (string, error) {
	if len(content) > e.maxSize {
		return "", fmt.Errorf("template size (%d bytes) exceeds maximum allowed size (%d bytes)", len(content), e.maxSize)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	resultChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	// Render in a goroutine with panic recovery so a broken template can
	// never take down the caller.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errorChan <- fmt.Errorf("panic during liquid rendering: %v", r)
			}
		}()

		rendered, err := e.engine.ParseAndRenderString(content, data)
		if err != nil {
			errorChan <- fmt.Errorf("liquid rendering failed: %w", err)
			return
		}

		resultChan <- rendered
	}()

	select {
	case result := <-resultChan:
		return result, nil
	case err := <-errorChan:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("liquid rendering timeout after %v", e.timeout)
	}
}
