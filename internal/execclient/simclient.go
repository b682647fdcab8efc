// Package execclient provides ExecutionClient implementations. SimClient
// simulates a venue connection over the same websocket wrapper the
// market-data side of this stack uses, rather than a production venue
// integration — it satisfies the contract the engine consumes so the
// engine can be exercised end-to-end without a real broker.
package execclient

import (
	"context"

	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/ws"

	"github.com/mostrub/nautilus-trader/internal/engine"
)

// simCommand is the wire envelope SimClient sends for every outbound
// command.
type simCommand struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	ClOrdID   string `json:"clOrdId"`
	Symbol    string `json:"symbol"`
	Side      uint8  `json:"side"`
	Qty       string `json:"qty"`
	Price     string `json:"price"`
	AccountID string `json:"accountId,omitempty"`
}

// simAck is the wire envelope the simulator acknowledges a command with.
type simAck struct {
	ID    int64  `json:"id"`
	Error string `json:"error,omitempty"`
}

// simEvent is the wire envelope the simulator pushes asynchronously for
// order and fill occurrences.
type simEvent struct {
	Kind      string `json:"kind"`
	ClOrdID   string `json:"clOrdId"`
	Symbol    string `json:"symbol"`
	Reason    string `json:"reason"`
	Qty       string `json:"qty"`
	Price     string `json:"price"`
	Side      uint8  `json:"side"`
	LeavesQty string `json:"leavesQty"`
}

// SimClient is an engine.ExecutionClient that speaks a small JSON protocol
// over a websocket connection to a simulated venue.
//
// Grounded on the market-data side's ws.WebSocket usage: SendAndWait for
// request/ack command round trips, Subscribe for the asynchronous event
// feed fills and rejects arrive on.
type SimClient struct {
	wss     *ws.WebSocket
	nextID  int64
	onEvent func(engine.Event)
}

// NewSimClient builds a client for url whose async event feed is forwarded
// to onEvent. It does not connect; Start opens the connection and begins
// forwarding.
func NewSimClient(ctx context.Context, url string, onEvent func(engine.Event)) *SimClient {
	return &SimClient{
		wss:     ws.New(ctx, url),
		onEvent: onEvent,
	}
}

var _ engine.ExecutionClient = (*SimClient)(nil)

var orderEventKindByWireKind = map[string]engine.OrderEventKind{
	"submitted":     engine.OrderEventSubmitted,
	"accepted":      engine.OrderEventAccepted,
	"working":       engine.OrderEventWorking,
	"filled":        engine.OrderEventFilled,
	"cancelled":     engine.OrderEventCancelled,
	"expired":       engine.OrderEventExpired,
	"rejected":      engine.OrderEventRejected,
	"denied":        engine.OrderEventDenied,
	"invalid":       engine.OrderEventInvalid,
	"cancel_reject": engine.OrderEventCancelReject,
}

// decodeEvent maps the simulator's wire event onto the engine's OrderEvent
// union. Account and position events are not yet part of the simulated
// protocol; the simulator only models the order/fill side of a venue.
func decodeEvent(evt simEvent) (engine.Event, bool) {
	kind, ok := orderEventKindByWireKind[evt.Kind]
	if !ok {
		return engine.Event{}, false
	}

	qty, err := decimal.NewFromString(zeroIfEmpty(evt.Qty))
	if err != nil {
		return engine.Event{}, false
	}
	leaves, err := decimal.NewFromString(zeroIfEmpty(evt.LeavesQty))
	if err != nil {
		return engine.Event{}, false
	}

	return engine.Event{
		Kind: engine.EventOrder,
		Order: engine.OrderEvent{
			Kind:      kind,
			ClOrdID:   engine.ClOrdID(evt.ClOrdID),
			Symbol:    engine.Symbol(evt.Symbol),
			Reason:    evt.Reason,
			LeavesQty: leaves,
			Fill: engine.Fill{
				Qty:    qty,
				Side:   engine.Side(evt.Side),
				Symbol: engine.Symbol(evt.Symbol),
			},
		},
	}, true
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// Start opens the websocket connection and begins observing the event
// feed.
func (c *SimClient) Start(ctx context.Context) error {
	if err := c.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start simulated venue connection")
	}
	c.observe(ctx)
	return nil
}

// Close tears down the websocket connection.
func (c *SimClient) Close() {
	c.wss.Close()
}

func (c *SimClient) observe(ctx context.Context) {
	ch, cancel := c.wss.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				evt, ok := ws.ReadMessage[simEvent](m)
				if !ok {
					continue
				}
				engineEvt, ok := decodeEvent(evt)
				if !ok {
					logs.Errorf("execclient: dropping unrecognized event kind %q", evt.Kind)
					continue
				}
				c.onEvent(engineEvt)
			}
		}
	}()
}

func (c *SimClient) send(ctx context.Context, cmd simCommand) error {
	c.nextID++
	cmd.ID = c.nextID

	return c.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, conn *ws.WebSocket) error {
			if err := conn.WriteJSON(cmd); err != nil {
				return errors.Wrap(err, "write command").With("command", cmd)
			}
			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			ack, ok := ws.ReadMessage[simAck](m)
			if !ok || ack.ID != cmd.ID {
				return false, nil
			}
			if ack.Error != "" {
				return false, errors.Errorf("simulated venue rejected command %d: %s", cmd.ID, ack.Error)
			}
			return true, nil
		},
	}, true)
}

// SubmitOrder sends a submit command for a single order.
func (c *SimClient) SubmitOrder(o engine.Order) error {
	return c.send(context.Background(), simCommand{
		Kind:    "submit",
		ClOrdID: string(o.ClOrdID),
		Symbol:  string(o.Symbol),
		Side:    uint8(o.Side),
		Qty:     o.Qty.String(),
	})
}

// SubmitBracketOrder sends three submit commands, one per leg.
func (c *SimClient) SubmitBracketOrder(b engine.BracketOrder) error {
	for _, leg := range b.Legs() {
		if err := c.send(context.Background(), simCommand{
			Kind:    "submit",
			ClOrdID: string(leg.ClOrdID),
			Symbol:  string(leg.Symbol),
			Side:    uint8(leg.Side),
			Qty:     leg.Qty.String(),
			Price:   leg.Price.String(),
		}); err != nil {
			return errors.Wrapf(err, "submit bracket leg %s", leg.Role)
		}
	}
	return nil
}

// ModifyOrder sends a modify command for an existing order.
func (c *SimClient) ModifyOrder(clOrdID engine.ClOrdID, qty, price decimal.Decimal) error {
	return c.send(context.Background(), simCommand{
		Kind:    "modify",
		ClOrdID: string(clOrdID),
		Qty:     qty.String(),
		Price:   price.String(),
	})
}

// CancelOrder sends a cancel command for an existing order.
func (c *SimClient) CancelOrder(clOrdID engine.ClOrdID) error {
	return c.send(context.Background(), simCommand{Kind: "cancel", ClOrdID: string(clOrdID)})
}

// AccountInquiry sends an account state request.
func (c *SimClient) AccountInquiry(accountID engine.AccountID) error {
	return c.send(context.Background(), simCommand{Kind: "account_inquiry", AccountID: string(accountID)})
}
