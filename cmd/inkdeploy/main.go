// Command inkdeploy drives the deployment orchestrator from the terminal:
// it loads a contract bundle, builds and signs a deployment request, runs
// it against a chain connection, and writes a receipt of the terminal
// result.
//
// The node's RPC transport is an injected concern; this driver ships with
// the in-process simulator so the full pipeline can be exercised without a
// node (-simulate), and prints the bundle's constructors with -inspect.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avense/inkdeploy/artifact"
	"github.com/avense/inkdeploy/codec"
	"github.com/avense/inkdeploy/deploy"
	"github.com/avense/inkdeploy/internal/config"
	"github.com/avense/inkdeploy/internal/metrics"
	"github.com/avense/inkdeploy/internal/receipt"
	"github.com/avense/inkdeploy/keyring"
	"github.com/avense/inkdeploy/simchain"
)

// seedEnvVar names the environment variable holding the hex signing seed.
// The seed is never accepted as a flag or config value.
const seedEnvVar = "INKDEPLOY_SEED"

func main() {
	if err := run(); err != nil {
		slog.Error("inkdeploy failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "Path to a config file (optional)")
		artifactArg = flag.String("artifact", "", "Path to the .contract bundle (overrides config)")
		constructor = flag.String("constructor", "", "Constructor label (overrides config)")
		inspect     = flag.Bool("inspect", false, "Print the bundle's constructors and exit")
		simulate    = flag.Bool("simulate", false, "Deploy against the in-process simulator")
	)
	flag.Parse()

	// A local .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *artifactArg != "" {
		cfg.Artifact.Path = *artifactArg
	}
	if *constructor != "" {
		cfg.Deploy.Constructor = *constructor
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	art, err := artifact.Load(cfg.Artifact.Path)
	if err != nil {
		return fmt.Errorf("load artifact: %w", err)
	}
	logger.Info("artifact loaded",
		slog.String("contract", art.Metadata.ContractName),
		slog.String("code_hash", art.CodeHash.Hex()),
		slog.Int("constructors", len(art.Metadata.Constructors)),
	)

	if *inspect {
		printConstructors(art)
		return nil
	}
	if !*simulate {
		return fmt.Errorf("no chain connection configured: run with -simulate, or embed the deploy package with your node's ChainConnection")
	}

	signer, err := signerFromEnv()
	if err != nil {
		return err
	}

	conn := simchain.New(simchain.WithEventDelay(50 * time.Millisecond))
	defer conn.Close()

	recorder := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	deployer := deploy.NewDeployer(conn,
		deploy.WithLogger(logger),
		deploy.WithObserver(recorder),
	)

	params, err := buildParams(cfg, art)
	if err != nil {
		return err
	}

	attemptID := uuid.New()
	started := time.Now()
	res, err := deployer.DeployWithTimeout(context.Background(), params, signer,
		time.Duration(cfg.Deploy.TimeoutSeconds)*time.Second)
	if err != nil {
		return fmt.Errorf("deploy: %w", err)
	}

	writer := receipt.NewWriter(cfg.Receipt.Dir, logger)
	rec := receipt.FromResult(
		attemptID.String(),
		art.Metadata.ContractName,
		params.Constructor,
		art.CodeHash.Hex(),
		started, time.Now(), res,
	)
	if _, err := writer.Write(rec); err != nil {
		return err
	}

	if !res.Successful() {
		return fmt.Errorf("deployment failed (%s): %w", res.Kind, res.Err)
	}
	logger.Info("contract deployed",
		slog.String("address", res.Address.Hex()),
		slog.String("ss58", keyring.SS58Address(res.Address, cfg.Node.SS58Prefix)),
		slog.String("finalized_block", res.BlockHash.Hex()),
	)
	return nil
}

func buildParams(cfg *config.Config, art *artifact.Artifact) (deploy.Params, error) {
	label := cfg.Deploy.Constructor
	if label == "" && len(art.Metadata.Constructors) > 0 {
		label = art.Metadata.Constructors[0].Label
	}
	ctor, err := art.Metadata.Constructor(label)
	if err != nil {
		return deploy.Params{}, err
	}

	args, err := convertArgs(ctor, cfg.Deploy.Args)
	if err != nil {
		return deploy.Params{}, err
	}

	limits := deploy.ResourceLimits{
		GasLimit: codec.Weight{RefTime: cfg.Deploy.GasRefTime, ProofSize: cfg.Deploy.GasProofSize},
	}
	if limits.Endowment, err = parseBalance(cfg.Deploy.Endowment); err != nil {
		return deploy.Params{}, fmt.Errorf("endowment: %w", err)
	}
	if limits.StorageDepositLimit, err = parseBalance(cfg.Deploy.StorageDepositLimit); err != nil {
		return deploy.Params{}, fmt.Errorf("storage deposit limit: %w", err)
	}

	params := deploy.Params{
		Artifact:    art,
		Constructor: label,
		Args:        args,
		Limits:      limits,
	}
	if cfg.Deploy.Salt != "" {
		salt, err := hex.DecodeString(cfg.Deploy.Salt)
		if err != nil {
			return deploy.Params{}, fmt.Errorf("salt: %w", err)
		}
		params.Salt = salt
	}
	return params, nil
}

func signerFromEnv() (keyring.Signer, error) {
	seedHex := os.Getenv(seedEnvVar)
	if seedHex == "" {
		return nil, fmt.Errorf("%s is not set; export a 32-byte hex seed", seedEnvVar)
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid hex", seedEnvVar)
	}
	return keyring.NewFromSeed(seed)
}

func printConstructors(art *artifact.Artifact) {
	for i, c := range art.Metadata.Constructors {
		fmt.Printf("%d: %s(", i, c.Label)
		for j, a := range c.Args {
			if j > 0 {
				fmt.Print(", ")
			}
			fmt.Printf("%s: %s", a.Label, a.Type)
		}
		fmt.Printf(") selector=0x%x\n", c.Selector)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", slog.String("error", err.Error()))
	}
}
