// Command audioproc runs the multi-channel ALSA-class audio processor:
// five required command-line flags identify the audio interface, then
// the process captures, processes, and plays back audio while a
// websocket control plane and a SQLite parameter store run alongside
// it. Argument parsing is hand-rolled colon-delimited flags, grounded
// on the original main.cpp's parse_string_arg/parse_uint_arg.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/l-bnp/audioproc/internal/config"
	"github.com/l-bnp/audioproc/internal/device"
	"github.com/l-bnp/audioproc/internal/eventbus"
	"github.com/l-bnp/audioproc/internal/logger"
	"github.com/l-bnp/audioproc/internal/processor"
	"github.com/l-bnp/audioproc/internal/store"
	"github.com/l-bnp/audioproc/internal/transport"
)

const usage = "Usage: %s -interface:<audio_interface_name> -inputs:<input_number> -outputs:<output_number> -rate:<sample_rate> -port:<server_port>\n"

type cliArgs struct {
	iface   string
	inputs  int
	outputs int
	rate    int
	port    int
}

func main() {
	args, err := parseArgs(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	cfg := config.Get()

	logConfig := logger.DefaultConfig()
	if cfg.Advanced.LogLevel != "" {
		logConfig.Level = cfg.Advanced.LogLevel
	}
	logger.Initialize(logConfig)
	defer logger.Get().Close()

	logger.Info("audioproc starting",
		logger.String("interface", args.iface),
		logger.Int("inputs", args.inputs),
		logger.Int("outputs", args.outputs),
		logger.Int("rate", args.rate),
		logger.Int("port", args.port),
	)

	if cfg.Device.RestoreMixerState {
		restoreMixerState(cfg.Device.MixerStateFile)
	}

	bus := eventbus.New()

	storeCfg := store.DefaultConfig()
	storeCfg.Path = cfg.Store.Path
	storeCfg.MaxOpenConns = cfg.Store.MaxOpenConns
	storeCfg.MaxIdleConns = cfg.Store.MaxIdleConns
	storeCfg.ConnMaxLifetime = cfg.Store.ConnMaxLifetime
	paramStore, err := store.Open(storeCfg, bus)
	if err != nil {
		logger.Fatal("failed to open parameter store", logger.Error(err))
	}
	defer paramStore.Close()

	dev, err := device.Open(args.iface, args.inputs, args.outputs, args.rate, framesPerPeriod)
	if err != nil {
		logger.Fatal("failed to open audio device", logger.Error(err))
	}

	proc := processor.New(processor.Config{
		Inputs:        args.inputs,
		Outputs:       args.outputs,
		SampleRate:    args.rate,
		FramesPerRead: framesPerPeriod,
	}, dev, bus)

	transportCfg := transport.Config{
		ReadBufferSize:  cfg.Transport.ReadBufferSize,
		WriteBufferSize: cfg.Transport.WriteBufferSize,
		WriteTimeout:    cfg.Transport.WriteTimeout,
		SampleRate:      args.rate,
	}
	server := transport.NewServer(bus, transportCfg)
	go func() {
		addr := "0.0.0.0:" + strconv.Itoa(args.port)
		if err := server.Serve(addr); err != nil {
			logger.ErrorLog("control transport stopped", logger.Error(err))
		}
	}()
	defer server.Close()

	if err := proc.Run(); err != nil {
		logger.Fatal("audio processing stopped", logger.Error(err))
	}
}

// framesPerPeriod is the in-process read/process/write batch size
// (spec §4.10's "F"). 256 frames at typical sample rates keeps control
// latency low without making the per-read syscall overhead dominant.
const framesPerPeriod = 256

// parseArgs implements the original's flag grammar: exactly five
// "-name:value" arguments, any order, all required, unknown or missing
// flags are a usage error.
func parseArgs(argv []string) (cliArgs, error) {
	if len(argv) != 6 {
		return cliArgs{}, fmt.Errorf("expected 5 arguments, got %d", len(argv)-1)
	}

	var args cliArgs
	var haveIface, haveInputs, haveOutputs, haveRate, havePort bool

	for _, arg := range argv[1:] {
		switch {
		case consume(arg, "-interface:", &args.iface):
			haveIface = true
		case consumeUint(arg, "-inputs:", &args.inputs):
			haveInputs = true
		case consumeUint(arg, "-outputs:", &args.outputs):
			haveOutputs = true
		case consumeUint(arg, "-rate:", &args.rate):
			haveRate = true
		case consumeUint(arg, "-port:", &args.port):
			havePort = true
		default:
			return cliArgs{}, fmt.Errorf("invalid option: %s", arg)
		}
	}

	if !haveIface || !haveInputs || !haveOutputs || !haveRate || !havePort {
		return cliArgs{}, fmt.Errorf("missing required flag")
	}
	return args, nil
}

func consume(arg, flag string, out *string) bool {
	if !strings.HasPrefix(arg, flag) {
		return false
	}
	*out = strings.TrimPrefix(arg, flag)
	return true
}

func consumeUint(arg, flag string, out *int) bool {
	if !strings.HasPrefix(arg, flag) {
		return false
	}
	v, err := strconv.Atoi(strings.TrimPrefix(arg, flag))
	if err != nil || v < 0 {
		return false
	}
	*out = v
	return true
}

// restoreMixerState runs the platform-specific, best-effort sound-card
// configuration restore (spec §6). Failure is logged but non-fatal —
// the original shells out to `alsactl ... restore` unconditionally and
// ignores its exit status.
func restoreMixerState(path string) {
	cmd := exec.Command("alsactl", "--file", path, "restore")
	if err := cmd.Run(); err != nil {
		logger.Warn("alsactl restore failed (non-fatal)", logger.String("path", path), logger.Error(err))
	}
}
