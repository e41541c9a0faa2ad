package kernels

import (
	"github.com/mfalk/ellipsim/internal/dispatch"
	"github.com/mfalk/ellipsim/internal/kernels/cpu"
)

// Platform is a compute backend: a named kernel factory that may or may
// not be usable on this machine.
type Platform interface {
	dispatch.KernelFactory
	Name() string
	Available() bool
}

// AutoSelect returns the best available platform. The reference CPU
// platform is always available and currently the only one; GPU platforms
// slot in here when present.
func AutoSelect() Platform {
	return cpu.NewPlatform()
}
