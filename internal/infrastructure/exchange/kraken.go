package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/crypto_strategy_bot/internal/domain"
)

const (
	KrakenBaseURL = "https://api.kraken.com"
	KrakenWSURL   = "wss://ws.kraken.com"
)

// KrakenAdapter fetches OHLC history over the public REST API and streams
// executed trades over the public websocket. REST symbols are compact pair
// names ("XBTUSD"); websocket symbols carry a slash ("XBT/USD").
type KrakenAdapter struct {
	baseURL        string
	wsURL          string
	client         *http.Client
	wsConn         *websocket.Conn
	wsDone         chan struct{}
	tradeCallbacks []func(pair string, side string, size float64, price float64)
	lastPrices     map[string]float64
	mu             sync.Mutex
}

func NewKrakenAdapter(baseURL, wsURL string) *KrakenAdapter {
	if baseURL == "" {
		baseURL = KrakenBaseURL
	}
	if wsURL == "" {
		wsURL = KrakenWSURL
	}
	return &KrakenAdapter{
		baseURL:    baseURL,
		wsURL:      wsURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		wsDone:     make(chan struct{}),
		lastPrices: make(map[string]float64),
	}
}

// --- REST API ---

func (k *KrakenAdapter) sendRequest(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s", string(respBody))
	}

	return respBody, nil
}

// krakenResponse is the common envelope of the public endpoints. Result
// keys are pair names normalized by the exchange, so they may not match
// the requested pair exactly.
type krakenResponse struct {
	Error  []string                   `json:"error"`
	Result map[string]json.RawMessage `json:"result"`
}

func (k *KrakenAdapter) GetCandles(ctx context.Context, symbol string, interval domain.Interval, limit int) ([]domain.Candle, error) {
	minutes, err := interval.Minutes()
	if err != nil {
		return nil, err
	}

	path := "/0/public/OHLC?pair=" + url.QueryEscape(symbol) +
		"&interval=" + strconv.Itoa(minutes)
	body, err := k.sendRequest(ctx, path)
	if err != nil {
		return nil, err
	}

	var env krakenResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode OHLC response: %w", err)
	}
	if len(env.Error) > 0 {
		return nil, fmt.Errorf("OHLC request failed: %v", env.Error)
	}

	var rows [][]json.RawMessage
	for key, raw := range env.Result {
		if key == "last" {
			continue
		}
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode OHLC rows for %s: %w", key, err)
		}
		break
	}

	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		// [time, open, high, low, close, vwap, volume, count]
		if len(row) < 7 {
			continue
		}
		var ts float64
		if err := json.Unmarshal(row[0], &ts); err != nil {
			continue
		}
		values := make([]float64, 0, 5)
		ok := true
		for _, raw := range []json.RawMessage{row[1], row[2], row[3], row[4], row[6]} {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				ok = false
				break
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				ok = false
				break
			}
			values = append(values, v)
		}
		if !ok {
			continue
		}
		candles = append(candles, domain.Candle{
			Timestamp: time.Unix(int64(ts), 0).UTC(),
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
		})
	}

	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

// GetCurrentPrice returns the latest streamed trade price for the pair,
// falling back to the REST ticker when no trade has been seen yet.
func (k *KrakenAdapter) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	k.mu.Lock()
	price, ok := k.lastPrices[symbol]
	k.mu.Unlock()
	if ok {
		return price, nil
	}

	body, err := k.sendRequest(ctx, "/0/public/Ticker?pair="+url.QueryEscape(symbol))
	if err != nil {
		return 0, err
	}

	var env krakenResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return 0, fmt.Errorf("decode ticker response: %w", err)
	}
	if len(env.Error) > 0 {
		return 0, fmt.Errorf("ticker request failed: %v", env.Error)
	}

	for key, raw := range env.Result {
		var ticker struct {
			C []string `json:"c"` // [last trade price, lot volume]
		}
		if err := json.Unmarshal(raw, &ticker); err != nil {
			return 0, fmt.Errorf("decode ticker for %s: %w", key, err)
		}
		if len(ticker.C) == 0 {
			continue
		}
		return strconv.ParseFloat(ticker.C[0], 64)
	}
	return 0, fmt.Errorf("no ticker data for %s", symbol)
}

// --- WebSocket ---

func (k *KrakenAdapter) OnTradeUpdate(callback func(pair string, side string, size float64, price float64)) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.tradeCallbacks = append(k.tradeCallbacks, callback)
}

func (k *KrakenAdapter) ConnectWS(pairs []string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.wsConn != nil {
		// Already connected, just subscribe
		return k.subscribe(pairs)
	}

	c, _, err := websocket.DefaultDialer.Dial(k.wsURL, nil)
	if err != nil {
		return err
	}
	k.wsConn = c

	go k.readLoop()

	return k.subscribe(pairs)
}

func (k *KrakenAdapter) Subscribe(pairs []string) error {
	k.mu.Lock()
	if k.wsConn == nil {
		k.mu.Unlock()
		// Not connected yet, ConnectWS will handle it
		return k.ConnectWS(pairs)
	}
	defer k.mu.Unlock()
	return k.subscribe(pairs)
}

func (k *KrakenAdapter) subscribe(pairs []string) error {
	if len(pairs) == 0 {
		return nil
	}
	subMsg := map[string]interface{}{
		"event": "subscribe",
		"pair":  pairs,
		"subscription": map[string]interface{}{
			"name": "trade",
		},
	}
	return k.wsConn.WriteJSON(subMsg)
}

func (k *KrakenAdapter) readLoop() {
	defer func() {
		k.wsConn.Close()
		k.mu.Lock()
		k.wsConn = nil
		k.mu.Unlock()
	}()

	for {
		_, message, err := k.wsConn.ReadMessage()
		if err != nil {
			log.Println("WS Read error:", err)
			close(k.wsDone)
			return
		}

		// Channel payloads are arrays; events (subscription status,
		// heartbeats) are objects and carry no trades.
		var frame []json.RawMessage
		if err := json.Unmarshal(message, &frame); err != nil {
			continue
		}
		if len(frame) < 4 {
			continue
		}

		var channel string
		if err := json.Unmarshal(frame[len(frame)-2], &channel); err != nil || channel != "trade" {
			continue
		}
		var pair string
		if err := json.Unmarshal(frame[len(frame)-1], &pair); err != nil {
			continue
		}

		var trades [][]json.RawMessage
		if err := json.Unmarshal(frame[1], &trades); err != nil {
			log.Println("WS Unmarshal error:", err)
			continue
		}

		for _, trade := range trades {
			// [price, volume, time, side, orderType, misc]
			if len(trade) < 4 {
				continue
			}
			var priceStr, sizeStr, side string
			if err := json.Unmarshal(trade[0], &priceStr); err != nil {
				continue
			}
			if err := json.Unmarshal(trade[1], &sizeStr); err != nil {
				continue
			}
			if err := json.Unmarshal(trade[3], &side); err != nil {
				continue
			}

			price, _ := strconv.ParseFloat(priceStr, 64)
			size, _ := strconv.ParseFloat(sizeStr, 64)

			k.mu.Lock()
			k.lastPrices[pair] = price
			callbacks := make([]func(string, string, float64, float64), len(k.tradeCallbacks))
			copy(callbacks, k.tradeCallbacks)
			k.mu.Unlock()

			for _, cb := range callbacks {
				cb(pair, side, size, price)
			}
		}
	}
}

func (k *KrakenAdapter) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.wsConn == nil {
		return nil
	}
	return k.wsConn.Close()
}
