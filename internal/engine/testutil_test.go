package engine

import (
	"sync"

	"github.com/yanun0323/decimal"
)

// fakeDB is a minimal, single-goroutine-safe ExecutionDatabase used across
// this package's tests.
type fakeDB struct {
	mu        sync.Mutex
	trader    TraderID
	orders    map[ClOrdID]Order
	positions map[PositionID]Position
	accounts  map[AccountID]Account
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		trader:    "trader-1",
		orders:    make(map[ClOrdID]Order),
		positions: make(map[PositionID]Position),
		accounts:  make(map[AccountID]Account),
	}
}

func (d *fakeDB) TraderID() TraderID {
	return d.trader
}

func (d *fakeDB) OrderExists(id ClOrdID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.orders[id]
	return ok
}

func (d *fakeDB) GetOrder(id ClOrdID) (*Order, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.orders[id]
	if !ok {
		return nil, false
	}
	return &o, true
}

func (d *fakeDB) SaveOrder(o Order) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orders[o.ClOrdID] = o
	return nil
}

func (d *fakeDB) UpdateOrder(o Order) error {
	return d.SaveOrder(o)
}

func (d *fakeDB) GetPosition(id PositionID) (*Position, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.positions[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (d *fakeDB) GetPositionsOpen(symbol *Symbol, strategyID *StrategyID) []Position {
	d.mu.Lock()
	defer d.mu.Unlock()
	var open []Position
	for _, p := range d.positions {
		if p.State != PositionOpen {
			continue
		}
		if symbol != nil && p.Symbol != *symbol {
			continue
		}
		if strategyID != nil && p.StrategyID != *strategyID {
			continue
		}
		open = append(open, p)
	}
	return open
}

func (d *fakeDB) PositionsOpenCount(symbol *Symbol, strategyID *StrategyID) int {
	return len(d.GetPositionsOpen(symbol, strategyID))
}

func (d *fakeDB) GetAccount(id AccountID) (Account, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	acct, ok := d.accounts[id]
	return acct, ok
}

func (d *fakeDB) AddAccount(acct Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[acct.AccountID] = acct
	return nil
}

func (d *fakeDB) UpdateAccount(acct Account) error {
	return d.AddAccount(acct)
}

func (d *fakeDB) SavePosition(p Position) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.positions[p.PositionID] = p
	return nil
}

func (d *fakeDB) UpdatePosition(p Position) error {
	return d.SavePosition(p)
}

func (d *fakeDB) GetSymbolPositionCounts() (map[Symbol]uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	counts := make(map[Symbol]uint64)
	for _, p := range d.positions {
		counts[p.Symbol]++
	}
	return counts, nil
}

func (d *fakeDB) CheckResiduals() (Residuals, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var res Residuals
	for _, o := range d.orders {
		if !o.State.IsTerminal() {
			res.OpenOrders = append(res.OpenOrders, o)
		}
	}
	for _, p := range d.positions {
		if p.State == PositionOpen {
			res.OpenPositions = append(res.OpenPositions, p)
		}
	}
	return res, nil
}

// fakeClient is a no-op ExecutionClient that records the last call made to
// it, for assertions.
type fakeClient struct {
	mu       sync.Mutex
	Orders   []Order
	Brackets []BracketOrder
	Modifies []ClOrdID
	Cancels  []ClOrdID
}

func newFakeClient() *fakeClient {
	return &fakeClient{}
}

func (c *fakeClient) SubmitOrder(o Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Orders = append(c.Orders, o)
	return nil
}

func (c *fakeClient) SubmitBracketOrder(b BracketOrder) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Brackets = append(c.Brackets, b)
	return nil
}

func (c *fakeClient) ModifyOrder(id ClOrdID, _, _ decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Modifies = append(c.Modifies, id)
	return nil
}

func (c *fakeClient) CancelOrder(id ClOrdID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Cancels = append(c.Cancels, id)
	return nil
}

func (c *fakeClient) AccountInquiry(AccountID) error {
	return nil
}

// fakePortfolio records every PositionEvent it is given.
type fakePortfolio struct {
	mu       sync.Mutex
	events   []PositionEvent
	currency Currency
}

func newFakePortfolio() *fakePortfolio {
	return &fakePortfolio{}
}

func (p *fakePortfolio) Update(evt PositionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *fakePortfolio) SetBaseCurrency(c Currency) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currency = c
}

func (p *fakePortfolio) BaseCurrency() Currency {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currency
}

// fakeStrategy records every callback it receives.
type fakeStrategy struct {
	mu             sync.Mutex
	orderEvents    []OrderEvent
	positionEvents []PositionEvent
	cancelRejects  []OrderEvent
	handle         EngineHandle
	callOrder      []string // "order" or "position", in delivery order
}

func newFakeStrategy() *fakeStrategy {
	return &fakeStrategy{}
}

func (s *fakeStrategy) OnOrderEvent(evt OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderEvents = append(s.orderEvents, evt)
	s.callOrder = append(s.callOrder, "order")
}

func (s *fakeStrategy) OnPositionEvent(evt PositionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positionEvents = append(s.positionEvents, evt)
	s.callOrder = append(s.callOrder, "position")
}

func (s *fakeStrategy) OnCancelReject(evt OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelRejects = append(s.cancelRejects, evt)
}

func (s *fakeStrategy) RegisterExecutionEngine(h EngineHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = h
}

func (s *fakeStrategy) lastOrderEvent() (OrderEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.orderEvents) == 0 {
		return OrderEvent{}, false
	}
	return s.orderEvents[len(s.orderEvents)-1], true
}

func newTestEngine() (*Engine, *fakeDB, *fakeClient, *fakePortfolio) {
	db := newFakeDB()
	client := newFakeClient()
	portfolio := newFakePortfolio()
	e, err := New(Config{
		TraderID:  "trader-1",
		AccountID: "acct-1",
		OMS:       OMSNetting,
		Database:  db,
		Client:    client,
		Portfolio: portfolio,
	})
	if err != nil {
		panic(err)
	}
	return e, db, client, portfolio
}
