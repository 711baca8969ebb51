//go:build cgo
// +build cgo

package onnxrt

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var env struct {
	once sync.Once
	err  error
}

// Init initializes the ONNX Runtime environment once per process. libPath
// selects the shared library; empty uses the onnxruntime_go default. Later
// calls return the first call's result and ignore libPath.
func Init(libPath string) error {
	env.once.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			env.err = fmt.Errorf("failed to initialize ONNX runtime: %w", err)
		}
	})
	return env.err
}
