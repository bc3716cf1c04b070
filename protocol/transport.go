package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const (
	defaultMaxRecordSize = 1 << 24
	defaultDialRetries   = 10
	defaultDialWait      = 500 * time.Millisecond

	// closeGrace bounds how long a dialing end waits for its peer to finish
	// the stream after a half-close.
	closeGrace = 250 * time.Millisecond

	relayMethod = "/pathfinder.Relay/Records"
)

// relayServer is implemented by Listener; the service has one
// bidirectional stream carrying records both ways.
type relayServer interface {
	records(grpc.ServerStream) error
}

var relayServiceDesc = grpc.ServiceDesc{
	ServiceName: "pathfinder.Relay",
	HandlerType: (*relayServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Records",
			Handler:       recordsHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "pathfinder/relay",
}

func recordsHandler(srv any, ss grpc.ServerStream) error {
	return srv.(relayServer).records(ss)
}

// Option configures a transport endpoint.
type Option func(*options)

type options struct {
	logger        *log.Logger
	maxRecordSize int
	dialRetries   int
	dialWait      time.Duration
}

// WithLogger sets the transport logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMaxRecordSize caps the body size sent to and accepted from the peer.
func WithMaxRecordSize(n int) Option {
	return func(o *options) {
		o.maxRecordSize = n
	}
}

// WithDialRetries sets how many times Dial retries an unreachable peer and
// how long it waits between attempts.
func WithDialRetries(n int, wait time.Duration) Option {
	return func(o *options) {
		o.dialRetries = n
		o.dialWait = wait
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		maxRecordSize: defaultMaxRecordSize,
		dialRetries:   defaultDialRetries,
		dialWait:      defaultDialWait,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		// Discard logging if no logger is set
		o.logger = log.New(io.Discard, "", 0)
	}
	return o
}

// Listener serves the relay stream and hands out the single peer of a fixed
// topology.
type Listener struct {
	ln    net.Listener
	srv   *grpc.Server
	opts  *options
	conns chan *streamConn
	taken atomic.Bool
	stop  sync.Once
}

// NewListener starts serving on addr.
func NewListener(addr string, opts ...Option) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	o := newOptions(opts)
	l := &Listener{
		ln:    ln,
		opts:  o,
		conns: make(chan *streamConn, 1),
		srv: grpc.NewServer(
			grpc.ForceServerCodec(recordCodec{}),
			grpc.MaxRecvMsgSize(o.maxRecordSize+1),
			grpc.MaxSendMsgSize(o.maxRecordSize+1),
		),
	}
	l.srv.RegisterService(&relayServiceDesc, l)

	go func() {
		if err := l.srv.Serve(ln); err != nil {
			l.opts.logger.Printf("relay server stopped: %v", err)
		}
	}()
	l.opts.logger.Printf("listening on tcp address: %v", ln.Addr())
	return l, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Accept waits for the peer to open its stream.
func (l *Listener) Accept(ctx context.Context) (Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting peers. An accepted stream stays open until its Conn
// is closed.
func (l *Listener) Close() error {
	l.stop.Do(func() {
		go l.srv.GracefulStop()
	})
	return nil
}

func (l *Listener) records(ss grpc.ServerStream) error {
	if !l.taken.CompareAndSwap(false, true) {
		return status.Error(codes.ResourceExhausted, "peer already connected")
	}

	c := newStreamConn(ss, l.opts)
	if p, ok := peer.FromContext(ss.Context()); ok {
		l.opts.logger.Printf("peer connected from %v", p.Addr)
	}
	l.conns <- c

	// Returning ends the stream, so hold it until either side is done.
	select {
	case <-c.done:
	case <-ss.Context().Done():
	}
	return nil
}

// Listen accepts exactly one peer on addr and stops listening.
func Listen(ctx context.Context, addr string, opts ...Option) (Conn, error) {
	l, err := NewListener(addr, opts...)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	return l.Accept(ctx)
}

// Dial opens the relay stream to a listening peer, retrying while the peer
// is unreachable during topology setup.
func Dial(ctx context.Context, addr string, opts ...Option) (Conn, error) {
	o := newOptions(opts)

	cc, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff: backoff.Config{
				BaseDelay:  o.dialWait,
				Multiplier: 1,
				MaxDelay:   o.dialWait,
			},
		}),
		grpc.WithDefaultCallOptions(
			grpc.ForceCodec(recordCodec{}),
			grpc.MaxCallRecvMsgSize(o.maxRecordSize+1),
			grpc.MaxCallSendMsgSize(o.maxRecordSize+1),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	for attempt := 0; ; attempt++ {
		// The stream outlives ctx, which only bounds setup.
		streamCtx, cancel := context.WithCancel(context.Background())
		cs, err := cc.NewStream(streamCtx, &relayServiceDesc.Streams[0], relayMethod)
		if err == nil {
			o.logger.Printf("connected to tcp address: %v", addr)
			c := newStreamConn(cs, o)
			c.release = func() {
				cancel()
				_ = cc.Close()
			}
			return c, nil
		}
		cancel()

		if status.Code(err) != codes.Unavailable || attempt >= o.dialRetries {
			_ = cc.Close()
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}

		o.logger.Printf("peer %s not ready, retrying in %s", addr, o.dialWait)
		select {
		case <-time.After(o.dialWait):
		case <-ctx.Done():
			_ = cc.Close()
			return nil, ctx.Err()
		}
	}
}

// stream is the part of grpc.ClientStream and grpc.ServerStream a Conn
// needs.
type stream interface {
	SendMsg(m any) error
	RecvMsg(m any) error
}

type received struct {
	record Record
	err    error
}

// streamConn is a Conn over one relay stream. A single reader goroutine
// drains the stream so Receive can honour its context.
type streamConn struct {
	stream   stream
	opts     *options
	incoming chan received
	closing  chan struct{}
	done     chan struct{}
	exited   chan struct{}
	once     sync.Once
	release  func() // set on the dialing end
}

func newStreamConn(s stream, o *options) *streamConn {
	c := &streamConn{
		stream:   s,
		opts:     o,
		incoming: make(chan received),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *streamConn) readLoop() {
	defer close(c.exited)
	for {
		var r Record
		err := c.stream.RecvMsg(&r)
		select {
		case c.incoming <- received{record: r, err: err}:
		case <-c.closing:
			// Drop what arrives until the peer ends the stream.
		case <-c.done:
			return
		}
		if err != nil {
			return
		}
	}
}

// Send implements Conn.
func (c *streamConn) Send(ctx context.Context, r Record) error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRecordType, byte(r.Type))
	}
	if len(r.Body) > c.opts.maxRecordSize {
		return fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, len(r.Body))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-c.closing:
		return ErrDisconnected
	default:
	}

	if err := c.stream.SendMsg(&r); err != nil {
		return c.wrap(ctx, err)
	}
	return nil
}

// Receive implements Conn.
func (c *streamConn) Receive(ctx context.Context) (Record, error) {
	select {
	case in := <-c.incoming:
		if in.err != nil {
			return Record{}, c.wrap(ctx, in.err)
		}
		if !in.record.Type.Valid() {
			return Record{}, fmt.Errorf("%w: %w: %d", ErrProtocolViolation, ErrInvalidRecordType, byte(in.record.Type))
		}
		return in.record, nil
	case <-c.closing:
		return Record{}, ErrDisconnected
	case <-c.exited:
		return Record{}, ErrDisconnected
	case <-ctx.Done():
		return Record{}, ctx.Err()
	}
}

// Close implements Conn. It is safe to call more than once.
func (c *streamConn) Close() error {
	c.once.Do(func() {
		close(c.closing)
		if cs, ok := c.stream.(grpc.ClientStream); ok {
			// Let the peer read everything before the stream is torn down.
			_ = cs.CloseSend()
			select {
			case <-c.exited:
			case <-time.After(closeGrace):
			}
		}
		close(c.done)
		if c.release != nil {
			c.release()
		}
	})
	return nil
}

func (c *streamConn) wrap(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrDisconnected, err)
	}
	switch status.Code(err) {
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %w", ErrRecordTooLarge, err)
	case codes.Canceled, codes.Unavailable, codes.Aborted:
		return fmt.Errorf("%w: %w", ErrDisconnected, err)
	}
	return err
}
