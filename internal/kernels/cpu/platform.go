package cpu

import (
	"fmt"
	"runtime"

	"github.com/mfalk/ellipsim/internal/dispatch"
)

// Platform is the reference CPU backend. Always available; parallelizes
// the pair loop across all cores.
type Platform struct {
	workers int
}

func NewPlatform() *Platform {
	return &Platform{workers: runtime.NumCPU()}
}

func (p *Platform) Name() string    { return "cpu" }
func (p *Platform) Available() bool { return true }

func (p *Platform) CreateKernel(name string, ctx dispatch.Context) (dispatch.KernelHandle, error) {
	if name != dispatch.CalcGayBerneForceKernel {
		return nil, fmt.Errorf("cpu: unknown kernel %q", name)
	}
	return &gayBerneKernel{workers: p.workers}, nil
}
