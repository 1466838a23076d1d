package telemetry

import pyroscope "github.com/grafana/pyroscope-go"

// ProfileConfig configures the continuous profiler wrapped around a
// benchmark run. ServerAddress is left empty by default; StartProfiling
// is a no-op unless a caller opts in with an explicit address.
type ProfileConfig struct {
	ApplicationName string
	ServerAddress   string
	Tags            map[string]string
}

// StartProfiling starts a continuous CPU/heap profiler against cfg. It
// returns a no-op stop function and no error when ServerAddress is empty —
// the benchmark harness runs unprofiled by default so a missing pyroscope
// server never blocks a local run.
func StartProfiling(cfg ProfileConfig) (stop func(), err error) {
	if cfg.ServerAddress == "" {
		return func() {}, nil
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Tags:            cfg.Tags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = profiler.Stop() }, nil
}
