// Command arenademo walks through the fixed arena and the arena-backed queue,
// printing arena statistics along the way.
package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/c2h5oh/datasize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/pavanmanishd/arena/v2"
)

func main() {
	cfg := arena.DefaultConfig()
	cfg.Capacity = 4 * datasize.KB

	app := kingpin.New("arenademo", "Walks through the fixed arena and the arena-backed queue.")
	configFile := app.Flag("config.file", "YAML file with arena settings. Replaces the arena flags when set.").String()
	logLevel := app.Flag("log.level", "Only log messages with the given severity or above.").
		Default("info").Enum("debug", "info", "warn", "error")
	dumpMetrics := app.Flag("metrics.dump", "Print arena metrics in text format after the walkthrough.").Bool()
	cfg.RegisterFlags(app)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := newLogger(*logLevel)

	if *configFile != "" {
		var err error
		if cfg, err = arena.LoadConfig(*configFile); err != nil {
			level.Error(logger).Log("msg", "failed to load config", "file", *configFile, "err", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		level.Error(logger).Log("msg", "invalid config", "err", err)
		os.Exit(1)
	}
	level.Debug(logger).Log("msg", "starting walkthrough", "capacity", cfg.Capacity.HumanReadable(), "backing", cfg.Backing)

	reg := prometheus.NewRegistry()
	d := &demo{out: os.Stdout, cfg: cfg, logger: logger, reg: reg}
	if err := d.run(); err != nil {
		level.Error(logger).Log("msg", "walkthrough failed", "err", err)
		os.Exit(1)
	}

	if *dumpMetrics {
		if err := writeMetrics(reg); err != nil {
			level.Error(logger).Log("msg", "failed to write metrics", "err", err)
			os.Exit(1)
		}
	}
}

func newLogger(lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, level.Allow(level.ParseDefault(lvl, level.InfoValue())))
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

func writeMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(os.Stdout, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
