package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"WaveScope/internal/domain/models"
	drepo "WaveScope/internal/domain/repository"
	applogger "WaveScope/pkg/logger"

	"github.com/gorilla/websocket"
)

// BinanceClient implements a MarketStream backed by the Binance kline
// WebSocket. Only closed klines are emitted as candles.
type BinanceClient struct {
	websocketURL   string
	symbols        []string
	interval       string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *applogger.Logger

	conn      *websocket.Conn
	connected bool
}

// New creates a new Binance MarketStream.
func New(websocketURL string, symbols []string, interval string, reconnectDelay, pingInterval time.Duration, log *applogger.Logger) drepo.MarketStream {
	return &BinanceClient{
		websocketURL:   websocketURL,
		symbols:        symbols,
		interval:       interval,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection.
func (c *BinanceClient) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	c.log.Info("binance stream connected", applogger.String("url", c.websocketURL))
	return nil
}

// Subscribe subscribes to the kline streams of the configured symbols.
func (c *BinanceClient) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("binance not connected")
	}
	params := make([]string, 0, len(c.symbols))
	for _, s := range c.symbols {
		params = append(params, fmt.Sprintf("%s@kline_%s", strings.ToLower(s), c.interval))
	}
	msg := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": params,
		"id":     time.Now().Unix(),
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe klines: %w", err)
	}
	c.log.Info("binance klines subscribed",
		applogger.Strings("streams", params),
	)
	return nil
}

type bnKline struct {
	StartMs int64  `json:"t"`
	Symbol  string `json:"s"`
	Open    string `json:"o"`
	Close   string `json:"c"`
	High    string `json:"h"`
	Low     string `json:"l"`
	Volume  string `json:"v"`
	Final   bool   `json:"x"`
}

type bnMessage struct {
	Event string  `json:"e"`
	Kline bnKline `json:"k"`
}

// Read streams closed candles and errors.
func (c *BinanceClient) Read(ctx context.Context) (<-chan *models.Candle, <-chan error) {
	candles := make(chan *models.Candle, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PongMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(candles)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("binance conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}
				var m bnMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-kline frames
					continue
				}
				if m.Event != "kline" || !m.Kline.Final {
					continue
				}
				candle, err := m.Kline.toCandle()
				if err != nil {
					c.log.Warn("binance kline parse", applogger.Error(err))
					continue
				}
				select {
				case candles <- candle:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return candles, errs
}

func (k bnKline) toCandle() (*models.Candle, error) {
	parse := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	o, err := parse(k.Open)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", k.Open, err)
	}
	h, err := parse(k.High)
	if err != nil {
		return nil, fmt.Errorf("high %q: %w", k.High, err)
	}
	l, err := parse(k.Low)
	if err != nil {
		return nil, fmt.Errorf("low %q: %w", k.Low, err)
	}
	cl, err := parse(k.Close)
	if err != nil {
		return nil, fmt.Errorf("close %q: %w", k.Close, err)
	}
	v, err := parse(k.Volume)
	if err != nil {
		return nil, fmt.Errorf("volume %q: %w", k.Volume, err)
	}
	return &models.Candle{
		Bucket: time.UnixMilli(k.StartMs).UTC(),
		Symbol: k.Symbol,
		Open:   o,
		High:   h,
		Low:    l,
		Close:  cl,
		Volume: v,
	}, nil
}

// Reconnect closes and reconnects.
func (c *BinanceClient) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *BinanceClient) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *BinanceClient) IsConnected() bool { return c.connected }
