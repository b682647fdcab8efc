package engine

import (
	"sync"

	"github.com/yanun0323/logs"
)

// defaultQueueCapacity bounds the Live Loop's buffer before TryPublish
// starts shedding with ErrQueueFull.
const defaultQueueCapacity = 4096

// Live wraps an Engine with a dedicated worker goroutine draining a single
// multi-producer FIFO queue, so strategies and the ExecutionClient can
// enqueue from any goroutine while the engine itself only ever runs its
// state machines on the worker. In-process and Live variants share
// identical Execute/Process semantics; Live only adds the queue and
// worker.
type Live struct {
	engine *Engine
	queue  *Queue

	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewLive wraps engine with a Live Loop of the given queue capacity. A
// capacity of 0 uses defaultQueueCapacity.
func NewLive(engine *Engine, capacity int) *Live {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &Live{
		engine: engine,
		queue:  NewQueue(capacity),
	}
}

var _ EngineHandle = (*Live)(nil)

// Engine returns the wrapped in-process Engine, e.g. for inspecting
// metrics or the residual check. Strategies driven through the Live Loop
// should be registered via Live.RegisterStrategy, not e.RegisterStrategy,
// so their EngineHandle callback routes back through the queue.
func (l *Live) Engine() *Engine {
	return l.engine
}

// RegisterStrategy adds a strategy to the wrapped engine's Strategy
// Registry. If s implements handleBinder, it is handed an EngineHandle
// bound to this Live wrapper — not the raw Engine — so any command s
// submits from a callback is enqueued onto the Live Loop's queue instead
// of running inline on whichever goroutine delivered the callback.
func (l *Live) RegisterStrategy(id StrategyID, s Strategy) error {
	if b, ok := s.(handleBinder); ok {
		b.RegisterExecutionEngine(l)
	}
	return l.engine.registry.Register(id, s)
}

// DeregisterStrategy removes a strategy from the wrapped engine's Strategy
// Registry.
func (l *Live) DeregisterStrategy(id StrategyID) error {
	return l.engine.registry.Deregister(id)
}

// Execute enqueues cmd for the worker to run through the wrapped Engine's
// Execute. It never blocks the caller, so a strategy callback running on
// the worker can submit a command without deadlocking against the very
// queue that delivered the callback.
func (l *Live) Execute(cmd Command) error {
	return l.SubmitCommand(cmd)
}

// Process enqueues evt for the worker to run through the wrapped Engine's
// Process.
func (l *Live) Process(evt Event) error {
	return l.SubmitEvent(evt)
}

// IsNetLong passes through to the wrapped Engine.
func (l *Live) IsNetLong(symbol Symbol, strategyID StrategyID) bool {
	return l.engine.IsNetLong(symbol, strategyID)
}

// IsNetShort passes through to the wrapped Engine.
func (l *Live) IsNetShort(symbol Symbol, strategyID StrategyID) bool {
	return l.engine.IsNetShort(symbol, strategyID)
}

// IsFlat passes through to the wrapped Engine.
func (l *Live) IsFlat(symbol Symbol, strategyID StrategyID) bool {
	return l.engine.IsFlat(symbol, strategyID)
}

// SubmitCommand enqueues a command for the worker to Execute. It never
// blocks the caller.
func (l *Live) SubmitCommand(cmd Command) error {
	return l.queue.TryPublish(Message{Kind: MessageCommand, Command: cmd})
}

// SubmitEvent enqueues an event for the worker to Process. It never blocks
// the caller.
func (l *Live) SubmitEvent(evt Event) error {
	return l.queue.TryPublish(Message{Kind: MessageEvent, Event: evt})
}

// Start launches the worker goroutine. Calling Start more than once is a
// no-op. The worker registers with the internal WaitGroup before Start
// returns, so a Stop issued immediately after Start always waits for it.
func (l *Live) Start() {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		l.queue.Run(l.handle)
	}()
}

// Run starts the worker and blocks on the calling goroutine until Stop
// drains the queue and the worker exits.
func (l *Live) Run() {
	l.Start()
	l.wg.Wait()
}

func (l *Live) handle(msg Message) {
	var err error
	switch msg.Kind {
	case MessageCommand:
		err = l.engine.Execute(msg.Command)
	case MessageEvent:
		err = l.engine.Process(msg.Event)
	default:
		logs.Errorf("engine: live loop: dropping message of unknown kind %d", msg.Kind)
		return
	}
	if err != nil {
		logs.Errorf("engine: live loop: %s", err)
	}
}

// Stop closes the queue so no further messages are accepted, waits for the
// worker to drain whatever was already buffered, then returns. This
// mirrors stopping venue clients before closing queues: callers should stop
// feeding events into SubmitEvent before calling Stop.
func (l *Live) Stop() {
	l.queue.Close()
	l.wg.Wait()
}
