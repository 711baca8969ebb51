// Package onnxrt owns the process-wide ONNX Runtime environment shared by the
// vision backend and the query embedder.
package onnxrt

import "errors"

// ErrUnavailable is returned when the binary was built without cgo.
var ErrUnavailable = errors.New("ONNX Runtime requires CGO; build with CGO_ENABLED=1 and onnxruntime")
