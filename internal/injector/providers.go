package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/gaim/internal/config"
	"github.com/zeusync/gaim/internal/core/observability/log"
	"github.com/zeusync/gaim/internal/host/quic"
	"github.com/zeusync/gaim/internal/host/websocket"
	"github.com/zeusync/gaim/pkg/gaim"
)

// App is the assembled server process.
type App struct {
	Config    config.Config
	Logger    log.Log
	Runtime   *gaim.Runtime
	WebSocket *websocket.Server
	QUIC      *quic.Server
}

var Set = wire.NewSet(
	ProvideLogger,
	ProvideRuntime,
	ProvideWebSocket,
	ProvideQUIC,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) log.Log {
	return log.New(log.ParseLevel(cfg.Log.Level), log.Options{Encoding: cfg.Log.Encoding})
}

func ProvideRuntime(cfg config.Config, logger log.Log) *gaim.Runtime {
	return gaim.New(
		gaim.WithLogger(logger),
		gaim.WithGamepadSupport(cfg.Loop.Gamepad),
		gaim.WithHeldKeyReplay(cfg.Loop.ReplayHeldKeys),
		gaim.WithTickRecovery(cfg.Loop.TickRecovery),
		gaim.WithQueueSize(cfg.Loop.QueueSize),
	)
}

// ProvideWebSocket returns nil when the host is disabled.
func ProvideWebSocket(cfg config.Config, rt *gaim.Runtime, logger log.Log) *websocket.Server {
	if !cfg.WebSocket.Enabled {
		return nil
	}
	return websocket.NewServer(cfg.WebSocket, rt, logger)
}

// ProvideQUIC returns nil when the host is disabled.
func ProvideQUIC(cfg config.Config, rt *gaim.Runtime, logger log.Log) *quic.Server {
	if !cfg.QUIC.Enabled {
		return nil
	}
	return quic.NewServer(cfg.QUIC, rt, logger)
}
