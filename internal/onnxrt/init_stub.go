//go:build !cgo
// +build !cgo

package onnxrt

// Init always fails without cgo.
func Init(_ string) error {
	return ErrUnavailable
}
