package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/sequencer-seeder/api"
	"github.com/ruteri/sequencer-seeder/common"
	"github.com/ruteri/sequencer-seeder/config"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// ConfigOverrides collects the config values given on the command line.
func ConfigOverrides(cCtx *cli.Context) *config.Overrides {
	return &config.Overrides{
		Path:           cCtx.String(ConfigPathFlag.Name),
		ExternalRpcUrl: cCtx.String(ExternalRpcUrlFlag.Name),
		InternalRpcUrl: cCtx.String(InternalRpcUrlFlag.Name),
		DatabaseURI:    cCtx.String(DatabaseURIFlag.Name),
		MetricsAddr:    cCtx.String(MetricsAddrFlag.Name),
	}
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, cfg *config.Config) (*api.HTTPServerConfig, error) {
	externalAddr, err := cfg.ExternalListenAddr()
	if err != nil {
		return nil, err
	}
	internalAddr, err := cfg.InternalListenAddr()
	if err != nil {
		return nil, err
	}
	enablePprof := cCtx.Bool("pprof")
	drainDuration := time.Duration(cCtx.Int64("drain-seconds")) * time.Second

	return &api.HTTPServerConfig{
		ExternalListenAddr:       externalAddr,
		InternalListenAddr:       internalAddr,
		MetricsAddr:              cfg.MetricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}, nil
}

var ConfigPathFlag = &cli.StringFlag{
	Name:    "path",
	Value:   config.DefaultPath(),
	Usage:   "configuration directory holding Config.toml and signing_key",
	EnvVars: []string{"SEEDER_PATH"},
}

var ExternalRpcUrlFlag = &cli.StringFlag{
	Name:  "seeder-external-rpc-url",
	Usage: "override the seeder external rpc url",
}

var InternalRpcUrlFlag = &cli.StringFlag{
	Name:  "seeder-internal-rpc-url",
	Usage: "override the seeder internal rpc url",
}

var DatabaseURIFlag = &cli.StringFlag{
	Name:  "database-uri",
	Usage: "override the record store location: leveldb://<dir>, bolt://<file> or memory://",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Usage: "address to listen on for Prometheus metrics, overrides the config file",
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
}

var ServerFlags = []cli.Flag{
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
