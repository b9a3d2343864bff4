package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/models"
)

const (
	// clientBuffer is the per-client tick buffer; slow clients drop
	// ticks rather than stalling the relay.
	clientBuffer = 64

	reconnectDelay = 5 * time.Second
)

// Relay maintains one upstream connection to the market data websocket
// and fans incoming ticks out to every subscribed client. Pure pub/sub;
// ticks are not buffered beyond each client's channel.
type Relay struct {
	config *common.MarketConfig
	logger arbor.ILogger
	dialer *websocket.Dialer

	mu            sync.Mutex
	conn          *websocket.Conn
	clients       map[string]chan models.MarketTick
	clientTickers map[string][]string
	tickers       map[string]int

	// writeMu serializes upstream writes; gorilla allows only one
	// concurrent writer per connection.
	writeMu sync.Mutex

	done chan struct{}
	once sync.Once
}

// NewRelay creates a new market data relay
func NewRelay(config *common.MarketConfig, logger arbor.ILogger) *Relay {
	return &Relay{
		config:  config,
		logger:  logger,
		dialer:  websocket.DefaultDialer,
		clients:       make(map[string]chan models.MarketTick),
		clientTickers: make(map[string][]string),
		tickers:       make(map[string]int),
		done:          make(chan struct{}),
	}
}

// Start connects upstream and begins relaying. The read loop reconnects
// on failure until Stop is called.
func (r *Relay) Start(ctx context.Context) error {
	if !r.config.Enabled {
		r.logger.Info().Msg("Market data relay disabled by configuration")
		return nil
	}
	if r.config.APIKey == "" {
		return fmt.Errorf("Polygon API key is required for the market data relay")
	}

	go r.run(ctx)
	return nil
}

// Stop closes the upstream connection and all client channels.
func (r *Relay) Stop() {
	r.once.Do(func() {
		close(r.done)

		r.mu.Lock()
		defer r.mu.Unlock()

		if r.conn != nil {
			r.conn.Close()
			r.conn = nil
		}
		for id, ch := range r.clients {
			close(ch)
			delete(r.clients, id)
		}
	})
}

// Subscribe registers a client for the given tickers and returns the
// client id and its tick channel. The channel is closed on Stop or
// Unsubscribe.
func (r *Relay) Subscribe(tickers []string) (string, <-chan models.MarketTick) {
	id := uuid.New().String()
	ch := make(chan models.MarketTick, clientBuffer)

	r.mu.Lock()
	r.clients[id] = ch
	var added, owned []string
	for _, ticker := range tickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" {
			continue
		}
		owned = append(owned, ticker)
		r.tickers[ticker]++
		if r.tickers[ticker] == 1 {
			added = append(added, ticker)
		}
	}
	r.clientTickers[id] = owned
	conn := r.conn
	r.mu.Unlock()

	if conn != nil && len(added) > 0 {
		r.sendSubscribe(conn, added)
	}

	r.logger.Info().
		Str("client_id", id).
		Int("tickers", len(tickers)).
		Msg("Market relay client subscribed")

	return id, ch
}

// Unsubscribe removes a client, closes its channel, and drops upstream
// subscriptions that no remaining client needs.
func (r *Relay) Unsubscribe(id string) {
	r.mu.Lock()

	ch, exists := r.clients[id]
	if !exists {
		r.mu.Unlock()
		return
	}
	close(ch)
	delete(r.clients, id)

	var released []string
	for _, ticker := range r.clientTickers[id] {
		r.tickers[ticker]--
		if r.tickers[ticker] <= 0 {
			delete(r.tickers, ticker)
			released = append(released, ticker)
		}
	}
	delete(r.clientTickers, id)
	conn := r.conn
	r.mu.Unlock()

	if conn != nil && len(released) > 0 {
		r.sendUnsubscribe(conn, released)
	}

	r.logger.Info().Str("client_id", id).Msg("Market relay client unsubscribed")
}

func (r *Relay) run(ctx context.Context) {
	for {
		select {
		case <-r.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := r.connectAndRead(ctx); err != nil {
			r.logger.Warn().Err(err).Msg("Upstream market connection lost, reconnecting")
		}

		select {
		case <-r.done:
			return
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (r *Relay) connectAndRead(ctx context.Context) error {
	conn, _, err := r.dialer.DialContext(ctx, r.config.WebSocketURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial upstream websocket: %w", err)
	}
	defer conn.Close()

	auth := map[string]string{"action": "auth", "params": r.config.APIKey}
	r.writeMu.Lock()
	err = conn.WriteJSON(auth)
	r.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to authenticate upstream: %w", err)
	}

	r.mu.Lock()
	r.conn = conn
	active := make([]string, 0, len(r.tickers))
	for ticker := range r.tickers {
		active = append(active, ticker)
	}
	r.mu.Unlock()

	if len(active) > 0 {
		r.sendSubscribe(conn, active)
	}

	r.logger.Info().
		Str("url", r.config.WebSocketURL).
		Int("tickers", len(active)).
		Msg("Connected to upstream market websocket")

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			r.mu.Lock()
			r.conn = nil
			r.mu.Unlock()
			return fmt.Errorf("upstream read failed: %w", err)
		}

		// Upstream delivers events in arrays
		var ticks []models.MarketTick
		if err := json.Unmarshal(message, &ticks); err != nil {
			r.logger.Debug().Err(err).Msg("Skipping unparseable upstream message")
			continue
		}
		r.broadcast(ticks)
	}
}

// broadcast fans ticks out to every client, dropping on full buffers
func (r *Relay) broadcast(ticks []models.MarketTick) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tick := range ticks {
		if tick.Ticker == "" {
			continue
		}
		for _, ch := range r.clients {
			select {
			case ch <- tick:
			default:
			}
		}
	}
}

func (r *Relay) sendSubscribe(conn *websocket.Conn, tickers []string) {
	if err := r.sendAction(conn, "subscribe", tickers); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to send upstream subscription")
		return
	}
	r.logger.Debug().
		Int("tickers", len(tickers)).
		Msg("Subscribed upstream tickers")
}

func (r *Relay) sendUnsubscribe(conn *websocket.Conn, tickers []string) {
	if err := r.sendAction(conn, "unsubscribe", tickers); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to send upstream unsubscription")
	}
}

func (r *Relay) sendAction(conn *websocket.Conn, action string, tickers []string) error {
	params := make([]string, len(tickers))
	for i, ticker := range tickers {
		params[i] = "T." + ticker
	}

	msg := map[string]string{"action": action, "params": strings.Join(params, ",")}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return conn.WriteJSON(msg)
}
