// Command mudclient is the direct single-process deployment shape (spec
// §1): one process owns the world socket, the event engine, and the
// terminal renderer, wired together exactly as spec §5's thread table
// describes (minus the proxy's listener/client threads, which mudserver and
// mudthin implement instead).
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/thyth/mudcore/internal/codec"
	"github.com/thyth/mudcore/internal/conf"
	"github.com/thyth/mudcore/internal/event"
	"github.com/thyth/mudcore/internal/flow"
	"github.com/thyth/mudcore/internal/logging"
	"github.com/thyth/mudcore/internal/rules"
	"github.com/thyth/mudcore/internal/script"
	"github.com/thyth/mudcore/internal/telnet"
	"github.com/thyth/mudcore/internal/ui"
)

func main() {
	confFile := flag.String("conf-file", "mud.toml", "path to the TOML configuration file")
	flag.Parse()

	cfg, err := conf.Load(*confFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudclient: %v\n", err)
		os.Exit(1)
	}
	if cfg.World.Addr == "" {
		fmt.Fprintln(os.Stderr, "mudclient: world.addr is required")
		os.Exit(1)
	}

	log := openLog(cfg.Server.DebugFile)

	conn, err := net.Dial("tcp", cfg.World.Addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudclient: connect %s: %v\n", cfg.World.Addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	rt := newRuntime(log, cfg)
	runClient(rt, conn, cfg)
}

// openLog builds the debug logger named in server.debug_file, falling back
// to stderr at info level when unset (spec §6, AMBIENT STACK's logging
// section).
func openLog(path string) *logging.Logger {
	if path == "" {
		return logging.New(os.Stderr, logging.LevelInfo)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return logging.New(os.Stderr, logging.LevelInfo)
	}
	return logging.New(f, logging.LevelDebug)
}

// runtime bundles every component C8's engine composes, plus the channels
// connecting the concurrent activities in spec §5's thread table.
type runtime struct {
	log   *logging.Logger
	cdc   *codec.Codec
	flow  *flow.Flow
	cache *rules.TriggerCache

	triggers *rules.Triggers
	aliases  *rules.Aliases
	timers   *rules.Timers
	vars     *event.Vars

	engine *event.Engine
	lua    *script.Runtime

	events    chan event.Event
	outputs   chan event.Output
	toServer  chan []byte
}

func newRuntime(log *logging.Logger, cfg conf.Config) *runtime {
	maxLines := cfg.Term.MaxLines
	if maxLines < 1 {
		maxLines = 5000
	}
	rt := &runtime{
		log:      log,
		cdc:      codec.New(),
		flow:     flow.NewFlow(maxLines, 80, true),
		cache:    rules.NewTriggerCache(10),
		triggers: rules.NewTriggers(),
		aliases:  rules.NewAliases(),
		timers:   rules.NewTimers(),
		vars:     event.NewVars(),
		events:   make(chan event.Event, 64),
		outputs:  make(chan event.Output, 64),
		toServer: make(chan []byte, 64),
	}
	rt.engine = event.NewEngine(log, rt.cdc, rt.flow, rt.cache, rt.triggers, rt.aliases, rt.timers,
		rt.vars, cfg.Term.Delim(), cfg.Term.IgnoreEmpty, cfg.Term.SendEmptyCmd)
	rt.lua = script.New(rt.engine, rt.vars)
	rt.engine.SetScriptHost(rt.lua)
	return rt
}

// runClient spawns the world reader/writer and timer threads, pumps events
// through the engine on its own goroutine, and runs the bubbletea UI loop
// on the calling goroutine (spec §5: the UI thread "owns the raw-mode
// terminal handle").
func runClient(rt *runtime, conn net.Conn, cfg conf.Config) {
	defer rt.lua.Close()

	go worldReader(rt, conn)
	go worldWriter(rt, conn)
	go timerThread(rt)
	go enginePump(rt)

	scriptPrefix := rune('.')
	for _, r := range cfg.Term.ScriptPrefix {
		scriptPrefix = r
		break
	}
	histLines := cfg.Term.HistoryLines
	if histLines < 1 {
		histLines = 200
	}
	maxLines := cfg.Term.MaxLines
	if maxLines < 1 {
		maxLines = 5000
	}

	raw, err := ui.AcquireRawTerm()
	if err != nil {
		rt.log.Warnf("raw terminal mode: %v", err)
	}
	defer raw.Restore()

	model := ui.New(rt.outputs, rt.events, maxLines, true, scriptPrefix, histLines)
	if _, err := ui.NewProgram(model).Run(); err != nil {
		rt.log.Errorf("ui: %v", err)
	}
}

// worldReader runs the telnet.Reader loop over conn, translating its Events
// into engine Events or raw outbound negotiation bytes (spec §5 thread 2).
func worldReader(rt *runtime, conn net.Conn) {
	r := telnet.NewReader(conn, 4096)
	for {
		ev, err := r.Recv()
		if err != nil {
			rt.events <- event.Event{Kind: event.KindWorldDisconnected}
			return
		}
		switch ev.Kind {
		case telnet.Text:
			rt.events <- event.Event{Kind: event.KindWorldBytes, WorldBytes: ev.Data}
		case telnet.DataToSend:
			rt.toServer <- ev.Data
		case telnet.Disconnected:
			rt.events <- event.Event{Kind: event.KindWorldDisconnected}
			return
		case telnet.Empty:
			// nothing decoded yet; keep reading
		}
	}
}

// worldWriter drains raw bytes destined for the world socket (spec §5
// thread 3); both telnet negotiation replies and encoded user commands
// arrive on the same channel to preserve write ordering.
func worldWriter(rt *runtime, conn net.Conn) {
	for b := range rt.toServer {
		if _, err := conn.Write(b); err != nil {
			rt.log.Warnf("world write: %v", err)
			return
		}
	}
}

// timerThread blocks on the shared Timers delay queue and forwards fired
// ticks to the engine (spec §5 thread 7, spec §4.6).
func timerThread(rt *runtime) {
	for {
		tm, ok := rt.timers.OnSchedule()
		if !ok {
			continue
		}
		rt.events <- event.Event{Kind: event.KindTimerFired, TimerName: tm.Name}
	}
}

// enginePump is the single thread permitted to mutate engine state (spec
// §5 thread 1): it blocks on the inbound Event channel, hands each Event to
// Engine.HandleEvent, and fans the resulting Outputs to the world writer
// and the UI renderer.
func enginePump(rt *runtime) {
	for ev := range rt.events {
		if ev.Kind == event.KindQuit {
			// Only outputs is closed here: toServer is also written to by
			// worldReader (telnet negotiation replies), which keeps running
			// until the world socket itself closes, so closing it here would
			// race a send on a closed channel.
			close(rt.outputs)
			return
		}
		for _, out := range rt.engine.HandleEvent(ev) {
			if out.ToServer != "" {
				encoded, err := rt.cdc.Encode(out.ToServer)
				if err != nil {
					rt.outputs <- event.Output{ToUIText: fmt.Sprintf("[encode error: %v]\n", err)}
					continue
				}
				rt.toServer <- encoded
				continue
			}
			rt.outputs <- out
		}
	}
}
