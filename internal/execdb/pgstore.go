package execdb

import (
	"gorm.io/gorm"

	"github.com/yanun0323/errors"

	"github.com/mostrub/nautilus-trader/internal/engine"
	"github.com/mostrub/nautilus-trader/pkg/conn"
)

// Option configures a Postgres-backed ExecutionDatabase connection. It is
// conn.Option under a local name so callers of this package don't need to
// import pkg/conn directly.
type Option = conn.Option

// orderRow is the GORM model backing the orders table.
type orderRow struct {
	ClOrdID    string `gorm:"primaryKey"`
	Symbol     string
	Side       uint8
	Qty        string
	LeavesQty  string
	State      uint8
	StrategyID string
	PositionID string
}

// positionRow is the GORM model backing the positions table.
type positionRow struct {
	PositionID string `gorm:"primaryKey"`
	Symbol     string
	StrategyID string
	Side       uint8
	NetQty     string
	State      uint8
}

// accountRow is the GORM model backing the accounts table.
type accountRow struct {
	AccountID string `gorm:"primaryKey"`
	Currency  string
	Balance   string
	Margin    string
}

// Postgres is a durable engine.ExecutionDatabase backed by GORM, via the
// shared pkg/conn Postgres client. It is intended for engines that must
// recover their order/position view across a process restart without
// replaying a stream of prior events.
type Postgres struct {
	client *conn.Client
	db     *gorm.DB
	trader engine.TraderID
}

var _ engine.ExecutionDatabase = (*Postgres)(nil)

// Open connects to Postgres via pkg/conn, migrates the orders, positions
// and accounts tables, and stamps the returned store with trader.
func Open(trader engine.TraderID, opt Option) (*Postgres, error) {
	client, err := conn.New(opt)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	db := client.DB()
	if err := db.AutoMigrate(&orderRow{}, &positionRow{}, &accountRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate execution database schema")
	}
	return &Postgres{client: client, db: db, trader: trader}, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.client.Close()
}

// TraderID returns the trader id this store was stamped with when Open was
// called.
func (p *Postgres) TraderID() engine.TraderID {
	return p.trader
}

func toOrderRow(o engine.Order) orderRow {
	return orderRow{
		ClOrdID:    string(o.ClOrdID),
		Symbol:     string(o.Symbol),
		Side:       uint8(o.Side),
		Qty:        o.Qty.String(),
		LeavesQty:  o.LeavesQty.String(),
		State:      uint8(o.State),
		StrategyID: string(o.StrategyID),
		PositionID: string(o.PositionID),
	}
}

func fromOrderRow(r orderRow) (engine.Order, error) {
	qty, err := decimalFromString(r.Qty)
	if err != nil {
		return engine.Order{}, err
	}
	leaves, err := decimalFromString(r.LeavesQty)
	if err != nil {
		return engine.Order{}, err
	}
	return engine.Order{
		ClOrdID:    engine.ClOrdID(r.ClOrdID),
		Symbol:     engine.Symbol(r.Symbol),
		Side:       engine.Side(r.Side),
		Qty:        qty,
		LeavesQty:  leaves,
		State:      engine.OrderState(r.State),
		StrategyID: engine.StrategyID(r.StrategyID),
		PositionID: engine.PositionID(r.PositionID),
	}, nil
}

func toPositionRow(p engine.Position) positionRow {
	return positionRow{
		PositionID: string(p.PositionID),
		Symbol:     string(p.Symbol),
		StrategyID: string(p.StrategyID),
		Side:       uint8(p.Side),
		NetQty:     p.NetQty.String(),
		State:      uint8(p.State),
	}
}

func fromPositionRow(r positionRow) (engine.Position, error) {
	qty, err := decimalFromString(r.NetQty)
	if err != nil {
		return engine.Position{}, err
	}
	return engine.Position{
		PositionID: engine.PositionID(r.PositionID),
		Symbol:     engine.Symbol(r.Symbol),
		StrategyID: engine.StrategyID(r.StrategyID),
		Side:       engine.PositionSide(r.Side),
		NetQty:     qty,
		State:      engine.PositionState(r.State),
	}, nil
}

// OrderExists reports whether clOrdID has a row in the orders table.
func (p *Postgres) OrderExists(clOrdID engine.ClOrdID) bool {
	var count int64
	p.db.Model(&orderRow{}).Where("cl_ord_id = ?", string(clOrdID)).Count(&count)
	return count > 0
}

// GetOrder fetches the order row for clOrdID.
func (p *Postgres) GetOrder(clOrdID engine.ClOrdID) (*engine.Order, bool) {
	var row orderRow
	if err := p.db.First(&row, "cl_ord_id = ?", string(clOrdID)).Error; err != nil {
		return nil, false
	}
	o, err := fromOrderRow(row)
	if err != nil {
		return nil, false
	}
	return &o, true
}

// SaveOrder upserts the order row.
func (p *Postgres) SaveOrder(o engine.Order) error {
	row := toOrderRow(o)
	return p.db.Save(&row).Error
}

// UpdateOrder upserts the order's latest state.
func (p *Postgres) UpdateOrder(o engine.Order) error {
	return p.SaveOrder(o)
}

// GetPosition fetches the position row for positionID.
func (p *Postgres) GetPosition(positionID engine.PositionID) (*engine.Position, bool) {
	var row positionRow
	if err := p.db.First(&row, "position_id = ?", string(positionID)).Error; err != nil {
		return nil, false
	}
	pos, err := fromPositionRow(row)
	if err != nil {
		return nil, false
	}
	return &pos, true
}

// GetPositionsOpen fetches every open position row, optionally filtered to
// a symbol and/or a strategy.
func (p *Postgres) GetPositionsOpen(symbol *engine.Symbol, strategyID *engine.StrategyID) []engine.Position {
	q := p.db.Where("state = ?", uint8(engine.PositionOpen))
	if symbol != nil {
		q = q.Where("symbol = ?", string(*symbol))
	}
	if strategyID != nil {
		q = q.Where("strategy_id = ?", string(*strategyID))
	}
	var rows []positionRow
	if err := q.Find(&rows).Error; err != nil {
		return nil
	}
	open := make([]engine.Position, 0, len(rows))
	for _, row := range rows {
		pos, err := fromPositionRow(row)
		if err != nil {
			continue
		}
		open = append(open, pos)
	}
	return open
}

// PositionsOpenCount is the count GetPositionsOpen would return, without
// loading each row.
func (p *Postgres) PositionsOpenCount(symbol *engine.Symbol, strategyID *engine.StrategyID) int {
	q := p.db.Model(&positionRow{}).Where("state = ?", uint8(engine.PositionOpen))
	if symbol != nil {
		q = q.Where("symbol = ?", string(*symbol))
	}
	if strategyID != nil {
		q = q.Where("strategy_id = ?", string(*strategyID))
	}
	var count int64
	q.Count(&count)
	return int(count)
}

func toAccountRow(a engine.Account) accountRow {
	return accountRow{
		AccountID: string(a.AccountID),
		Currency:  string(a.Currency),
		Balance:   a.Balance.String(),
		Margin:    a.Margin.String(),
	}
}

func fromAccountRow(r accountRow) (engine.Account, error) {
	balance, err := decimalFromString(r.Balance)
	if err != nil {
		return engine.Account{}, err
	}
	margin, err := decimalFromString(r.Margin)
	if err != nil {
		return engine.Account{}, err
	}
	return engine.Account{
		AccountID: engine.AccountID(r.AccountID),
		Currency:  engine.Currency(r.Currency),
		Balance:   balance,
		Margin:    margin,
	}, nil
}

// GetAccount fetches the account row for id, if one was ever saved.
func (p *Postgres) GetAccount(id engine.AccountID) (engine.Account, bool) {
	var row accountRow
	if err := p.db.First(&row, "account_id = ?", string(id)).Error; err != nil {
		return engine.Account{}, false
	}
	acct, err := fromAccountRow(row)
	if err != nil {
		return engine.Account{}, false
	}
	return acct, true
}

// AddAccount persists an account for the first time.
func (p *Postgres) AddAccount(acct engine.Account) error {
	row := toAccountRow(acct)
	return p.db.Save(&row).Error
}

// UpdateAccount persists the account's latest balance/margin state.
func (p *Postgres) UpdateAccount(acct engine.Account) error {
	return p.AddAccount(acct)
}

// SavePosition upserts the position row.
func (p *Postgres) SavePosition(pos engine.Position) error {
	row := toPositionRow(pos)
	return p.db.Save(&row).Error
}

// UpdatePosition upserts the position's latest state.
func (p *Postgres) UpdatePosition(pos engine.Position) error {
	return p.SavePosition(pos)
}

// GetSymbolPositionCounts groups position rows by symbol.
func (p *Postgres) GetSymbolPositionCounts() (map[engine.Symbol]uint64, error) {
	var rows []struct {
		Symbol string
		Count  uint64
	}
	if err := p.db.Model(&positionRow{}).Select("symbol, count(*) as count").Group("symbol").Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "count positions by symbol")
	}
	counts := make(map[engine.Symbol]uint64, len(rows))
	for _, r := range rows {
		counts[engine.Symbol(r.Symbol)] = r.Count
	}
	return counts, nil
}

// CheckResiduals fetches every order not in a terminal state and every
// open position.
func (p *Postgres) CheckResiduals() (engine.Residuals, error) {
	var orderRows []orderRow
	terminal := []uint8{
		uint8(engine.OrderStateFilled), uint8(engine.OrderStateCancelled), uint8(engine.OrderStateExpired),
		uint8(engine.OrderStateRejected), uint8(engine.OrderStateDenied), uint8(engine.OrderStateInvalid),
	}
	if err := p.db.Where("state NOT IN ?", terminal).Find(&orderRows).Error; err != nil {
		return engine.Residuals{}, errors.Wrap(err, "fetch open orders")
	}

	var positionRows []positionRow
	if err := p.db.Where("state = ?", uint8(engine.PositionOpen)).Find(&positionRows).Error; err != nil {
		return engine.Residuals{}, errors.Wrap(err, "fetch open positions")
	}

	var res engine.Residuals
	for _, row := range orderRows {
		o, err := fromOrderRow(row)
		if err != nil {
			return engine.Residuals{}, err
		}
		res.OpenOrders = append(res.OpenOrders, o)
	}
	for _, row := range positionRows {
		pos, err := fromPositionRow(row)
		if err != nil {
			return engine.Residuals{}, err
		}
		res.OpenPositions = append(res.OpenPositions, pos)
	}
	return res, nil
}
