//go:build pprof

package profile

import (
	"errors"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Modes returns the supported profiling modes in lexical order.
var Modes = sync.OnceValue(
	func() []string {
		return slices.Sorted(maps.Keys(mode))
	},
)

var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// session stops its parts in reverse order of starting.
type session []func()

func (s session) Stop() {
	for _, stop := range slices.Backward(s) {
		stop()
	}
}

func start(s settings) Stopper {
	var sess session

	if fn, ok := mode[s.mode]; ok {
		opts := []func(*profile.Profile){fn}

		if s.path != "" {
			opts = append(opts, profile.ProfilePath(s.path))
		}

		if s.quiet {
			opts = append(opts, profile.Quiet)
		}

		sess = append(sess, profile.Start(opts...).Stop)
	}

	if s.addr != "" {
		srv := &http.Server{Addr: s.addr, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				panic(err)
			}
		}()

		sess = append(sess, func() { _ = srv.Close() })
	}

	return sess
}
