package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"

	"matchcore/internal/common"
	"matchcore/internal/engine"
	"matchcore/internal/events"
	"matchcore/internal/utils"
)

const (
	defaultNWorkers    = 10
	defaultConnTimeout = 5 * time.Minute
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
)

// ClientSession tracks one connected TCP session.
type ClientSession struct {
	conn net.Conn
}

type Server struct {
	address string
	port    int
	engine  *engine.Engine
	pool    utils.WorkerPool
	cancel  context.CancelFunc

	clientSessions     map[string]ClientSession
	clientSessionsLock sync.Mutex
}

func New(address string, port int, eng *engine.Engine) *Server {
	return &Server{
		address:        address,
		port:           port,
		engine:         eng,
		pool:           utils.NewWorkerPool(defaultNWorkers),
		clientSessions: make(map[string]ClientSession),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	s.engine.Shutdown()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})

	log.Info().Str("address", listener.Addr().String()).Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting client")
				continue
			}
			log.Info().Str("address", conn.RemoteAddr().String()).Msg("new client connected")
			s.addClientSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

// handleConnection is a long-lived worker method: it reads frames off
// conn until the connection dies, dispatching each to handleRequest and
// writing back a Report. It touches no shared client-session state
// directly beyond the add/delete helpers, which are themselves locked.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	address := conn.RemoteAddr().String()
	defer func() {
		s.deleteClientSession(address)
		if err := conn.Close(); err != nil {
			log.Error().Str("address", address).Err(err).Msg("error closing connection")
		}
	}()

	for {
		select {
		case <-t.Dying():
			return nil
		default:
		}

		_ = conn.SetDeadline(time.Now().Add(defaultConnTimeout))

		typeOf, body, err := readFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Error().Err(err).Str("address", address).Msg("error reading frame")
			}
			return nil
		}

		if typeOf == TypeSubscribe {
			var req SubscribeRequest
			if err := json.Unmarshal(body, &req); err != nil {
				writeReport(conn, Report{OK: false, Error: err.Error()})
				continue
			}
			s.streamSubscription(t, conn, req.Symbol)
			continue
		}

		report := s.handleRequest(typeOf, body)
		if err := writeReport(conn, report); err != nil {
			log.Error().Err(err).Str("address", address).Msg("error writing report")
			return nil
		}
	}
}

// streamSubscription hands conn over to a live event feed for symbol
// until the connection dies or the client disconnects, mirroring the
// engine's snapshot-then-stream subscribe semantics over the wire.
func (s *Server) streamSubscription(t *tomb.Tomb, conn net.Conn, symbol string) {
	sub := s.engine.Subscribe(symbol)
	defer sub.Unsubscribe()

	for {
		select {
		case <-t.Dying():
			return
		case ev, ok := <-sub.Events:
			if !ok {
				return
			}
			report := Report{OK: true, Event: &ev}
			if err := writeReport(conn, report); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleRequest(typeOf MessageType, body []byte) Report {
	switch typeOf {
	case TypeSubmitOrder:
		return s.handleSubmitOrder(body)
	case TypeCancelOrder:
		return s.handleCancelOrder(body)
	case TypeGetOrder:
		return s.handleGetOrder(body)
	case TypeListOrders:
		return s.handleListOrders(body)
	case TypeGetOrderBook:
		return s.handleGetOrderBook(body)
	case TypeGetRecentTrades:
		return s.handleGetRecentTrades(body)
	default:
		return Report{OK: false, Error: ErrInvalidMessageType.Error()}
	}
}

func parseDecimalPtr(lit *decimalLit) (*decimal.Decimal, error) {
	if lit == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*lit)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Server) handleSubmitOrder(body []byte) Report {
	var req SubmitOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return Report{OK: false, Error: err.Error()}
	}
	side, ok := parseSide(req.Side)
	if !ok {
		return Report{OK: false, Error: "unknown side " + req.Side}
	}
	kind, ok := parseKind(req.Kind)
	if !ok {
		return Report{OK: false, Error: "unknown order kind " + req.Kind}
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return Report{OK: false, Error: "invalid quantity: " + err.Error()}
	}
	price, err := parseDecimalPtr(req.Price)
	if err != nil {
		return Report{OK: false, Error: "invalid price: " + err.Error()}
	}
	stopPrice, err := parseDecimalPtr(req.StopPrice)
	if err != nil {
		return Report{OK: false, Error: "invalid stop price: " + err.Error()}
	}

	order, err := s.engine.Submit(req.UserID, req.Symbol, side, kind, quantity, price, stopPrice)
	report := Report{OK: order.Status != common.Rejected, Order: order}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}

func (s *Server) handleCancelOrder(body []byte) Report {
	var req CancelOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return Report{OK: false, Error: err.Error()}
	}
	order, err := s.engine.Cancel(req.OrderID, req.UserID)
	if err != nil {
		return Report{OK: false, Error: err.Error()}
	}
	return Report{OK: true, Order: order}
}

func (s *Server) handleGetOrder(body []byte) Report {
	var req GetOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return Report{OK: false, Error: err.Error()}
	}
	order, err := s.engine.Lookup(req.OrderID, req.UserID)
	if err != nil {
		return Report{OK: false, Error: err.Error()}
	}
	return Report{OK: true, Order: order}
}

func (s *Server) handleListOrders(body []byte) Report {
	var req ListOrdersRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return Report{OK: false, Error: err.Error()}
	}
	var status *common.Status
	if req.Status != nil {
		st, ok := parseStatus(*req.Status)
		if !ok {
			return Report{OK: false, Error: "unknown status " + *req.Status}
		}
		status = &st
	}
	orders := s.engine.ListOrders(req.UserID, status)
	return Report{OK: true, Orders: orders}
}

func (s *Server) handleGetOrderBook(body []byte) Report {
	var req GetOrderBookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return Report{OK: false, Error: err.Error()}
	}
	snapshot := s.engine.GetOrderBook(req.Symbol, req.Depth)
	return Report{OK: true, Book: snapshot}
}

func (s *Server) handleGetRecentTrades(body []byte) Report {
	var req GetRecentTradesRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return Report{OK: false, Error: err.Error()}
	}
	trades := s.engine.GetRecentTrades(req.Symbol, req.Limit)
	return Report{OK: true, Trades: trades}
}

// addClientSession is an atomic map add.
func (s *Server) addClientSession(conn net.Conn) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()
	s.clientSessions[conn.RemoteAddr().String()] = ClientSession{conn: conn}
}

// deleteClientSession is an atomic map remove.
func (s *Server) deleteClientSession(address string) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()
	delete(s.clientSessions, address)
}
