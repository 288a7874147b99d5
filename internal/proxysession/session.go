// Package proxysession implements the proxy session (C5): one client
// connection's lifecycle, coordinating the RESP framer (C2), the fault
// registry (C1) via the fault engine (C4), and the upstream connector
// (C3) over two concurrent byte pumps.
package proxysession

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Toyota-Connected-India/red-monkey-go/internal/faultengine"
	"github.com/Toyota-Connected-India/red-monkey-go/internal/faultstore"
	"github.com/Toyota-Connected-India/red-monkey-go/internal/respframe"
	"github.com/Toyota-Connected-India/red-monkey-go/internal/telemetry"
	"github.com/Toyota-Connected-India/red-monkey-go/internal/upstream"
)

const readChunk = 4096

// Session owns one accepted client socket and the upstream socket it is
// paired with. It is created on accept and destroyed when either peer
// closes, an I/O error occurs, or a DropConn fault fires.
type Session struct {
	id       uuid.UUID
	client   net.Conn
	registry *faultstore.Registry
	logger   zerolog.Logger
	metrics  *telemetry.Metrics

	writeMu sync.Mutex
}

// New constructs a Session for an accepted client connection. registry
// and metrics are shared handles, not copies; metrics may be nil, in
// which case metric recording is skipped.
func New(client net.Conn, registry *faultstore.Registry, logger zerolog.Logger, metrics *telemetry.Metrics) *Session {
	id := uuid.New()
	return &Session{
		id:       id,
		client:   client,
		registry: registry,
		logger:   logger.With().Str("session_id", id.String()).Logger(),
		metrics:  metrics,
	}
}

// ID returns the session's identifier, used to correlate log lines.
func (s *Session) ID() uuid.UUID { return s.id }

// Run dials connector and pumps bytes until either peer closes, an I/O
// error occurs, or a DropConn fault fires. It always closes the client
// socket before returning. ctx governs the whole session; canceling it
// (e.g. on process shutdown) tears the session down, abandoning any
// pending Delay.
func (s *Session) Run(ctx context.Context, connector *upstream.Connector) error {
	ctx, span := telemetry.Tracer().Start(ctx, "proxysession.Run",
		trace.WithAttributes(attribute.String("session.id", s.id.String())))
	defer span.End()

	defer s.client.Close()

	if s.metrics != nil {
		s.metrics.SessionsTotal.Inc()
		s.metrics.SessionsActive.Inc()
		defer s.metrics.SessionsActive.Dec()
	}

	upstreamConn, err := connector.Connect(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("upstream connect failed; closing session")
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream connect failed")
		return fmt.Errorf("proxysession: connect upstream: %w", err)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stopOnce sync.Once
	stop := func() {
		stopOnce.Do(func() {
			s.client.Close()
			upstreamConn.Close()
			cancel()
		})
	}
	defer stop()

	// Canceling ctx closes both sockets so pumps blocked in a read or
	// write return instead of waiting for a peer to close.
	go func() {
		<-sessionCtx.Done()
		stop()
	}()

	g, _ := errgroup.WithContext(sessionCtx)
	g.Go(func() error {
		defer stop()
		return s.pumpClientToUpstream(sessionCtx, upstreamConn)
	})
	g.Go(func() error {
		defer stop()
		return s.pumpUpstreamToClient(upstreamConn)
	})

	closeErr := g.Wait()
	s.logger.Info().Err(closeErr).Msg("session closed")
	if closeErr != nil {
		span.RecordError(closeErr)
	}
	return closeErr
}

// writeClient serializes writes to the client socket against both pumps:
// forwarded upstream bytes and synthetic error replies, so they can
// never interleave.
func (s *Session) writeClient(b []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.client.Write(b)
	return err
}

// pumpClientToUpstream reads client bytes into a growing frame buffer,
// extracts complete RESP frames via the framer, and for each one consults
// the fault engine before forwarding, delaying, replying with a synthetic
// error, or dropping the session.
func (s *Session) pumpClientToUpstream(ctx context.Context, upstreamConn net.Conn) error {
	buf := make([]byte, 0, readChunk)
	readBuf := make([]byte, readChunk)
	cursor := 0
	var pendingReadErr error

	for {
		for {
			status, frame := respframe.Scan(buf, cursor)
			if status == respframe.NeedMore {
				break
			}
			if status == respframe.Malformed {
				return ErrClientProtocol
			}
			if err := s.applyFault(ctx, upstreamConn, buf, frame); err != nil {
				return err
			}
			cursor = frame.End
		}

		if pendingReadErr != nil {
			return pendingReadErr
		}

		if cursor > 0 {
			n := copy(buf, buf[cursor:])
			buf = buf[:n]
			cursor = 0
		}

		n, err := s.client.Read(readBuf)
		if n > 0 {
			buf = append(buf, readBuf[:n]...)
		}
		if err != nil {
			// Read may return n>0 together with a non-nil err (including
			// io.EOF) in the same call: scan once more before returning so
			// a complete final frame delivered alongside the error still
			// reaches applyFault instead of being silently dropped.
			pendingReadErr = err
		}
	}
}

// applyFault resolves and executes the FaultDecision for one frame.
func (s *Session) applyFault(ctx context.Context, upstreamConn net.Conn, buf []byte, frame respframe.Frame) error {
	received := time.Now()
	decision := faultengine.Decide(s.registry, frame.CommandUpper)
	if s.metrics != nil {
		cmd := frame.CommandUpper
		if cmd == "" {
			cmd = "UNKNOWN"
		}
		s.metrics.RequestsTotal.WithLabelValues(cmd).Inc()
	}

	switch decision.Kind {
	case faultengine.PassThrough:
		_, err := upstreamConn.Write(buf[frame.Start:frame.End])
		s.observeForwardLatency(received)
		return err

	case faultengine.DelayThenPass:
		s.registry.RecordDelay()
		s.recordFault("Delay")
		s.logger.Debug().Dur("delay", decision.Duration).Str("command", frame.CommandUpper).Msg("delaying request")
		if err := faultengine.Sleep(ctx, decision.Duration); err != nil {
			return err
		}
		_, err := upstreamConn.Write(buf[frame.Start:frame.End])
		s.observeForwardLatency(received)
		return err

	case faultengine.ReplyErrorAndDiscard:
		s.registry.RecordError()
		s.recordFault("Error")
		s.logger.Debug().Str("command", frame.CommandUpper).Msg("replying synthetic error, discarding request")
		return s.writeClient(faultengine.EncodeError(decision.ErrorMsg))

	case faultengine.Drop:
		s.registry.RecordDrop()
		s.recordFault("DropConn")
		s.logger.Debug().Str("command", frame.CommandUpper).Msg("dropping connection")
		return errDropped

	default:
		return nil
	}
}

func (s *Session) recordFault(faultType string) {
	if s.metrics != nil {
		s.metrics.FaultsTotal.WithLabelValues(faultType).Inc()
	}
}

// observeForwardLatency records the time from receiving a client frame to
// forwarding it upstream, including any injected Delay: a DelayThenPass
// frame's forward latency is expected to reflect the configured delay, so
// dashboards built on this histogram show fault injection as elevated
// latency rather than hiding it.
func (s *Session) observeForwardLatency(received time.Time) {
	if s.metrics != nil {
		s.metrics.ForwardLatency.Observe(time.Since(received).Seconds())
	}
}

// pumpUpstreamToClient is a straight byte copy from upstream to the
// client with no framing; any read error or EOF ends the pump.
func (s *Session) pumpUpstreamToClient(upstreamConn net.Conn) error {
	buf := make([]byte, readChunk)
	for {
		n, err := upstreamConn.Read(buf)
		if n > 0 {
			if werr := s.writeClient(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
}
