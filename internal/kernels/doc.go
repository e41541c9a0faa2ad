// Package kernels selects a compute platform and hands out backend kernel
// factories.
//
// A platform resolves backend-independent kernel names (such as
// dispatch.CalcGayBerneForceKernel) to concrete implementations. The CPU
// reference platform is always available:
//
//	factory := kernels.AutoSelect()
//	kernel, err := factory.CreateKernel(dispatch.CalcGayBerneForceKernel, ctx)
package kernels
