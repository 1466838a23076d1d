package marketdata

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/clobcore/matching-engine/pkg/clob"
)

// BookSnapshotter is the read-only view a Server pulls Level-2 snapshots
// from. clob.Engine satisfies it; the server never mutates anything
// through it.
type BookSnapshotter interface {
	Book() *clob.Book
}

// Server exposes a REST snapshot/stats surface plus a websocket feed of
// Trade/Level2Update events, implementing clob.Publisher against a
// single instrument.
type Server struct {
	instrument string
	engine     BookSnapshotter
	router     *mux.Router
	hub        *Hub

	statsFn func() clob.Stats
}

// NewServer builds a Server for instrument, reading book snapshots from
// engine and stats from statsFn on demand.
func NewServer(instrument string, engine BookSnapshotter, statsFn func() clob.Stats) *Server {
	s := &Server{
		instrument: instrument,
		engine:     engine,
		router:     mux.NewRouter(),
		hub:        NewHub(),
		statsFn:    statsFn,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/orderbook", s.handleOrderbook).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start runs the hub's dispatch loop and serves addr until it returns an
// error (typically http.ErrServerClosed on shutdown).
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	log.Printf("[marketdata] server starting on %s", addr)
	return http.ListenAndServe(addr, c.Handler(s.router))
}

func (s *Server) handleOrderbook(w http.ResponseWriter, r *http.Request) {
	bids, asks := s.engine.Book().Snapshot(50)
	respondJSON(w, Level2SnapshotDTO{
		Instrument: s.instrument,
		Bids:       toLevelDTOs(bids),
		Asks:       toLevelDTOs(asks),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.statsFn())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[marketdata] upgrade error: %v", err)
		return
	}
	c := &client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
		id:   conn.RemoteAddr().String(),
		subs: make(map[string]bool),
	}
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
}

// PublishTrade implements clob.Publisher: it fans the trade out on the
// "trades" channel.
func (s *Server) PublishTrade(t clob.Trade) {
	s.hub.BroadcastToChannel("trades", TradeDTO{
		Instrument:    t.Instrument,
		AggressorID:   t.AggressorID,
		RestingID:     t.RestingID,
		AggressorSide: t.AggressorSide.String(),
		Price:         t.Price,
		Quantity:      t.Quantity,
		TimestampNs:   t.TimestampNs,
		LatencyNs:     t.LatencyNs,
	})
}

// PublishLevel2 implements clob.Publisher: it fans the level delta out on
// the "level2" channel.
func (s *Server) PublishLevel2(u clob.Level2Update) {
	s.hub.BroadcastToChannel("level2", Level2UpdateDTO{
		Side:       u.Side.String(),
		Price:      u.Price,
		Volume:     u.Volume,
		OrderCount: u.OrderCount,
	})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
