package telemetry

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/dentalshop/backend/internal/infrastructure/config"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig configures continuous profiling with Pyroscope
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
	BasicAuthUser   string
	BasicAuthPass   string
	// Contention enables mutex and block profiles on top of CPU and heap
	Contention bool
}

// ProfilerConfigFrom maps the telemetry section
func ProfilerConfigFrom(cfg config.TelemetryConfig) ProfilerConfig {
	return ProfilerConfig{
		Enabled:         cfg.ProfilingEnabled,
		ServerAddress:   cfg.ProfilingServer,
		ApplicationName: cfg.ServiceName,
		BasicAuthUser:   cfg.ProfilingUser,
		BasicAuthPass:   cfg.ProfilingPassword,
	}
}

const contentionRate = 5

// Profiler pushes profiles until Stop. The zero value (profiling disabled)
// is a no-op.
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
	once     sync.Once
}

func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Profiler{logger: logger}
	if !cfg.Enabled {
		return p, nil
	}
	if cfg.ServerAddress == "" {
		return nil, errors.New("profiler server address is required")
	}
	if cfg.ApplicationName == "" {
		return nil, errors.New("profiler application name is required")
	}

	types := profileTypes(cfg.Contention)
	if cfg.Contention {
		runtime.SetMutexProfileFraction(contentionRate)
		runtime.SetBlockProfileRate(contentionRate)
	}

	tags := map[string]string{}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.ApplicationName,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.BasicAuthUser,
		BasicAuthPassword: cfg.BasicAuthPass,
		Logger:            pyroscopeLogger{logger.Named("pyroscope").Sugar()},
		Tags:              tags,
		ProfileTypes:      types,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}
	p.profiler = profiler
	logger.Info("Profiling enabled",
		zap.String("server_address", cfg.ServerAddress),
		zap.Int("profile_types", len(types)),
	)
	return p, nil
}

func profileTypes(contention bool) []pyroscope.ProfileType {
	types := []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	}
	if contention {
		types = append(types,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockCount,
			pyroscope.ProfileBlockDuration,
		)
	}
	return types
}

func (p *Profiler) Enabled() bool {
	return p.profiler != nil
}

// Stop flushes pending profiles; later calls do nothing. The SDK takes no
// context, so a hung server can delay shutdown up to its internal timeout.
func (p *Profiler) Stop() error {
	var err error
	p.once.Do(func() {
		if p.profiler == nil {
			return
		}
		if err = p.profiler.Stop(); err != nil {
			err = fmt.Errorf("failed to stop profiler: %w", err)
		}
	})
	return err
}

type pyroscopeLogger struct{ s *zap.SugaredLogger }

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l pyroscopeLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }

var _ pyroscope.Logger = pyroscopeLogger{}
