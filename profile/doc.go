// Package profile starts optional runtime profiling of the formula command.
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof -o formula .
//
// Without the tag [Start] always returns a no-op [Stopper] and [Modes] is
// empty. With it, [github.com/pkg/profile] writes one profile per run to the
// directory given by [WithPath], and [WithAddr] serves the net/http/pprof
// handlers for live inspection:
//
//	formula --pprof-mode cpu --pprof-dir ./profiles '2 ^ 20'
//	go tool pprof ./profiles/cpu.pprof
//
// Supported modes: allocs, block, clock, cpu, goroutine, heap, mem, mutex,
// thread and trace.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
