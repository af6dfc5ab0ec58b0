package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/open-cuss/cuss2-go/pkg/wire"
)

// Linkage errors raised during composite construction.
var (
	ErrFeederNotLinked    = errors.New("printer has no linked feeder")
	ErrDispenserNotLinked = errors.New("printer has no linked dispenser")
)

// childQueryTimeout bounds the re-query of linked peripherals.
const childQueryTimeout = 10 * time.Second

// Printer is a composite component: a print head plus its linked feeder
// and dispenser. Its combined readiness and status are derived from all
// three peripherals.
type Printer struct {
	*Component

	feeder    *Component
	dispenser *Component

	combinedMu       sync.Mutex
	combinedReady    bool
	combinedStatus   wire.MessageCode
	onCombinedReady  []func(ready bool)
	onCombinedStatus []func(code wire.MessageCode)
}

// NewPrinter builds a composite printer. The feeder and dispenser are
// resolved among peers through the environment's linkage identifiers;
// construction fails if either is missing.
func NewPrinter(env wire.EnvironmentComponent, kind Kind, required bool, api API, peers map[int]Device) (*Printer, error) {
	var feeder, dispenser *Component
	for _, linkedID := range env.LinkedComponentIDs {
		peer, ok := peers[linkedID]
		if !ok {
			continue
		}
		base, ok := peer.(*Component)
		if !ok {
			continue
		}
		switch base.Kind() {
		case KindFeeder:
			feeder = base
		case KindDispenser:
			dispenser = base
		}
	}
	if feeder == nil {
		return nil, fmt.Errorf("component %d: %w", env.ComponentID, ErrFeederNotLinked)
	}
	if dispenser == nil {
		return nil, fmt.Errorf("component %d: %w", env.ComponentID, ErrDispenserNotLinked)
	}

	p := &Printer{
		Component:      New(env.ComponentID, kind, required, api),
		feeder:         feeder,
		dispenser:      dispenser,
		combinedStatus: wire.CodeOK,
	}

	// Any readiness or status movement on the print head or a child
	// recomputes the derived values.
	p.Component.OnReadyStateChange(func(ready bool) {
		if ready {
			p.requeryChildren()
		}
		p.recompute()
	})
	p.Component.OnStatusChange(func(code wire.MessageCode) {
		if code == wire.CodeMediaPresent {
			p.requeryChildren()
		}
		p.recompute()
	})
	for _, child := range []*Component{feeder, dispenser} {
		child.OnReadyStateChange(func(bool) { p.recompute() })
		child.OnStatusChange(func(wire.MessageCode) { p.recompute() })
	}

	return p, nil
}

// Feeder returns the linked feeder.
func (p *Printer) Feeder() *Component { return p.feeder }

// Dispenser returns the linked dispenser.
func (p *Printer) Dispenser() *Component { return p.dispenser }

// CombinedReady reports whether the print head, feeder and dispenser
// are all READY.
func (p *Printer) CombinedReady() bool {
	p.combinedMu.Lock()
	defer p.combinedMu.Unlock()
	return p.combinedReady
}

// CombinedStatus returns the first non-OK status among the print head,
// feeder and dispenser, or OK.
func (p *Printer) CombinedStatus() wire.MessageCode {
	p.combinedMu.Lock()
	defer p.combinedMu.Unlock()
	return p.combinedStatus
}

// OnCombinedReadyChange registers a listener fired when the derived
// readiness actually changes.
func (p *Printer) OnCombinedReadyChange(fn func(ready bool)) {
	p.combinedMu.Lock()
	defer p.combinedMu.Unlock()
	p.onCombinedReady = append(p.onCombinedReady, fn)
}

// OnCombinedStatusChange registers a listener fired when the derived
// status actually changes.
func (p *Printer) OnCombinedStatusChange(fn func(code wire.MessageCode)) {
	p.combinedMu.Lock()
	defer p.combinedMu.Unlock()
	p.onCombinedStatus = append(p.onCombinedStatus, fn)
}

// UpdateState applies one inbound frame, correcting a known platform
// quirk first: a TIMEOUT response to a send command that reports
// UNAVAILABLE arrives during the hold-for-pickup window while the
// printer is in fact operational, so the state is remapped to READY.
func (p *Printer) UpdateState(f *wire.Frame) {
	state := f.Meta.ComponentState
	code := f.Meta.MessageCode
	if f.Meta.Directive == wire.DirectiveSend &&
		code == wire.CodeTimeout && state == wire.ComponentUnavailable {
		state = wire.ComponentReady
	}
	p.applyState(state, code)
}

// recompute derives the combined readiness and status and fires change
// listeners only when a derived value actually moved.
func (p *Printer) recompute() {
	ready := p.Component.Ready() && p.feeder.Ready() && p.dispenser.Ready()

	status := wire.CodeOK
	for _, s := range []wire.MessageCode{p.Component.Status(), p.feeder.Status(), p.dispenser.Status()} {
		if s != wire.CodeOK {
			status = s
			break
		}
	}

	p.combinedMu.Lock()
	readyChanged := ready != p.combinedReady
	statusChanged := status != p.combinedStatus
	p.combinedReady = ready
	p.combinedStatus = status
	readyListeners := append([]func(bool){}, p.onCombinedReady...)
	statusListeners := append([]func(wire.MessageCode){}, p.onCombinedStatus...)
	p.combinedMu.Unlock()

	if readyChanged {
		for _, fn := range readyListeners {
			fn(ready)
		}
	}
	if statusChanged {
		for _, fn := range statusListeners {
			fn(status)
		}
	}
}

// requeryChildren refreshes the feeder and dispenser state so the
// derived values are not computed from stale children. Best effort.
func (p *Printer) requeryChildren() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), childQueryTimeout)
		defer cancel()
		_, _ = p.feeder.Query(ctx)
		_, _ = p.dispenser.Query(ctx)
	}()
}

// SetupRaw pushes one or more raw pectab or template strings to the
// printer as a single setup exchange.
func (p *Printer) SetupRaw(ctx context.Context, data ...string) (*wire.Frame, error) {
	return p.Setup(ctx, records(data...))
}

// SendRaw pushes raw print streams. A failed print triggers a
// best-effort cancel before the original error is returned.
func (p *Printer) SendRaw(ctx context.Context, data ...string) (*wire.Frame, error) {
	resp, err := p.Send(ctx, records(data...))
	if err != nil {
		cctx, cancel := context.WithTimeout(context.Background(), childQueryTimeout)
		_, _ = p.Cancel(cctx)
		cancel()
		return nil, err
	}
	return resp, nil
}

// PrintRaw prints a single raw stream.
func (p *Printer) PrintRaw(ctx context.Context, data string) (*wire.Frame, error) {
	return p.SendRaw(ctx, data)
}

// SetupAndPrintRaw runs a setup exchange followed by a print.
func (p *Printer) SetupAndPrintRaw(ctx context.Context, setup []string, data string) (*wire.Frame, error) {
	if len(setup) > 0 {
		if _, err := p.SetupRaw(ctx, setup...); err != nil {
			return nil, err
		}
	}
	return p.PrintRaw(ctx, data)
}
