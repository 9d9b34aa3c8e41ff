// Command agui-demo replays a scripted agent run over SSE and WebSocket.
//
// In serve mode it exposes the scripted event stream on both transports;
// in sse and ws modes it connects to a running server, assembles the
// stream and prints the resulting run view.
//
//	agui-demo -mode serve
//	agui-demo -mode sse -addr localhost:8765
//	agui-demo -mode ws -addr localhost:8765 -secure -insecure-skip-verify
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goa.design/clue/debug"
	"goa.design/clue/log"

	"goa.design/agui/assembler"
	"goa.design/agui/example"
	"goa.design/agui/protocol"
	"goa.design/agui/stream"
	"goa.design/agui/telemetry"
	"goa.design/agui/tools"
	"goa.design/agui/transport/sse"
	"goa.design/agui/transport/ws"
)

func main() {
	var (
		configF   = flag.String("config", "", "Path to YAML config file")
		modeF     = flag.String("mode", "serve", "Mode: serve, sse or ws")
		addrF     = flag.String("addr", "", "Listen or connect address (overrides config)")
		secureF   = flag.Bool("secure", false, "Use TLS with a self-signed certificate")
		skipF     = flag.Bool("insecure-skip-verify", false, "Skip TLS verification in client modes")
		intervalF = flag.Duration("interval", 0, "Event pacing interval (overrides config)")
		dbgF      = flag.Bool("debug", false, "Enable debug logs")
	)
	flag.Parse()

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if *dbgF {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}

	cfg := DefaultConfig()
	if *configF != "" {
		var err error
		if cfg, err = LoadConfig(*configF); err != nil {
			log.Fatal(ctx, err)
		}
	}
	if *addrF != "" {
		cfg.Addr = *addrF
	}
	if *secureF {
		cfg.Secure = true
	}
	if *intervalF > 0 {
		cfg.Interval = Duration{*intervalF}
	}

	logger := telemetry.NewClueLogger()
	metrics := telemetry.NewOTELMetrics()

	var err error
	switch *modeF {
	case "serve":
		err = serve(ctx, cfg, logger, metrics)
	case "sse":
		err = runSSEClient(ctx, cfg, *skipF, logger, metrics)
	case "ws":
		err = runWSClient(ctx, cfg, *skipF, logger, metrics)
	default:
		err = fmt.Errorf("unknown mode %q (want serve, sse or ws)", *modeF)
	}
	if err != nil {
		log.Fatal(ctx, err)
	}
}

// source starts a fresh scripted run for every connecting client and
// streams it through a channel sink.
func source(cfg Config, logger telemetry.Logger) func(*http.Request) (<-chan protocol.Event, error) {
	return func(r *http.Request) (<-chan protocol.Event, error) {
		script := example.NewScript(
			example.WithInterval(cfg.Interval.Duration),
			example.WithScriptLogger(logger),
		)
		sink := stream.NewChannelSink(64)
		ctx := r.Context()
		log.Print(ctx, log.KV{K: "msg", V: "run starting"},
			log.KV{K: "thread", V: script.ThreadID()}, log.KV{K: "run", V: script.RunID()})
		go func() {
			defer sink.Close(ctx)
			if err := script.Run(ctx, sink); err != nil {
				logger.Error(ctx, "script aborted", "err", err.Error())
			}
		}()
		return sink.Events(), nil
	}
}

func serve(ctx context.Context, cfg Config, logger telemetry.Logger, metrics telemetry.Metrics) error {
	src := source(cfg, logger)
	mux := http.NewServeMux()
	mux.Handle(cfg.SSEPath, sse.NewHandler(src, sse.WithLogger(logger), sse.WithMetrics(metrics)))
	mux.Handle(cfg.WSPath, ws.NewHandler(src, ws.WithLogger(logger), ws.WithMetrics(metrics)))

	var handler http.Handler = mux
	handler = debug.HTTP()(handler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errc <- fmt.Errorf("signal: %s", <-c)
	}()
	go func() {
		scheme := "http"
		if cfg.Secure {
			scheme = "https"
		}
		log.Print(ctx, log.KV{K: "msg", V: "listening"},
			log.KV{K: "addr", V: fmt.Sprintf("%s://%s", scheme, cfg.Addr)},
			log.KV{K: "sse", V: cfg.SSEPath}, log.KV{K: "ws", V: cfg.WSPath})
		if cfg.Secure {
			server, _, err := example.SelfSigned()
			if err != nil {
				errc <- err
				return
			}
			srv.TLSConfig = server
			errc <- srv.ListenAndServeTLS("", "")
			return
		}
		errc <- srv.ListenAndServe()
	}()

	err := <-errc
	log.Print(ctx, log.KV{K: "msg", V: "shutting down"}, log.KV{K: "reason", V: err.Error()})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runSSEClient(ctx context.Context, cfg Config, skipVerify bool, logger telemetry.Logger, metrics telemetry.Metrics) error {
	scheme := "http"
	hc := http.DefaultClient
	if cfg.Secure {
		scheme = "https"
		hc = &http.Client{Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: skipVerify}, //nolint:gosec // demo flag
		}}
	}
	url := fmt.Sprintf("%s://%s%s", scheme, cfg.Addr, cfg.SSEPath)

	client := sse.NewClient(url, sse.WithHTTPClient(hc),
		sse.WithClientLogger(logger), sse.WithClientMetrics(metrics))
	events, errs, err := client.Stream(ctx)
	if err != nil {
		return err
	}
	return consume(ctx, events, errs, logger, metrics)
}

func runWSClient(ctx context.Context, cfg Config, skipVerify bool, logger telemetry.Logger, metrics telemetry.Metrics) error {
	scheme := "ws"
	opts := []ws.ClientOption{ws.WithClientLogger(logger), ws.WithClientMetrics(metrics)}
	if cfg.Secure {
		scheme = "wss"
		opts = append(opts, ws.WithTLSConfig(&tls.Config{InsecureSkipVerify: skipVerify})) //nolint:gosec // demo flag
	}
	url := fmt.Sprintf("%s://%s%s", scheme, cfg.Addr, cfg.WSPath)

	client := ws.NewClient(opts...)
	events, errs, err := client.Stream(ctx, url)
	if err != nil {
		return err
	}
	return consume(ctx, events, errs, logger, metrics)
}

// consume folds the incoming stream into a run view and prints a summary
// once the stream ends. Assembled tool calls are checked against the
// demo tool schemas as they complete.
func consume(ctx context.Context, events <-chan protocol.Event, errs <-chan error, logger telemetry.Logger, metrics telemetry.Metrics) error {
	catalogue := tools.NewCatalogue()
	for _, def := range example.SampleTools() {
		if err := catalogue.Register(def); err != nil {
			return err
		}
	}

	asm := assembler.New(assembler.WithLogger(logger), assembler.WithMetrics(metrics))
	if _, err := asm.Bus().Register(catalogue.Validator(logger)); err != nil {
		return err
	}
	for event := range events {
		if err := asm.Feed(ctx, event); err != nil {
			logger.Warn(ctx, "event rejected", "type", string(event.Kind()), "err", err.Error())
		}
	}
	if err, ok := <-errs; ok && err != nil {
		return err
	}

	view := asm.Snapshot()
	log.Print(ctx, log.KV{K: "msg", V: "run assembled"},
		log.KV{K: "thread", V: view.ThreadID},
		log.KV{K: "run", V: view.RunID},
		log.KV{K: "phase", V: view.Phase.String()},
		log.KV{K: "messages", V: len(view.Messages)},
		log.KV{K: "tool_calls", V: len(view.ToolCalls)},
		log.KV{K: "thoughts", V: len(view.Thoughts)})
	for _, msg := range view.Messages {
		log.Print(ctx, log.KV{K: "role", V: string(msg.Role)}, log.KV{K: "content", V: msg.Content})
	}
	if view.State != nil {
		raw, err := view.State.MarshalJSON()
		if err == nil {
			log.Print(ctx, log.KV{K: "state", V: string(raw)})
		}
	}
	return nil
}
