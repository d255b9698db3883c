// Package engine is the session controller. It turns selection changes into
// selected-text reports and UI commands into completion requests.
package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"textassist/engine/internal/aggregate"
	"textassist/engine/internal/diff"
	"textassist/engine/internal/document"
	"textassist/engine/internal/errinfo"
	"textassist/engine/internal/llm"
	"textassist/engine/internal/logging"
	"textassist/engine/internal/settings"
)

const EngineVersion = "0.1.0"

const eventQueueSize = 32

// Notifier delivers an outbound record to the UI peer. It may be called from
// any goroutine.
type Notifier func(msg any)

// Completer is the completion endpoint as seen by the engine.
type Completer interface {
	Complete(ctx context.Context, text, apiKey, instructions string) (string, error)
}

// event is either a selection snapshot or a UI command.
type event struct {
	selection        []document.Node
	selectionChanged bool
	cmd              Command
}

// Engine owns the accumulation state for one plugin session.
//
// Precondition: the accumulator is only touched from the Run loop. The two
// host callbacks, SelectionChanged and Submit, just queue events, so selection
// changes and commands are handled one at a time in arrival order. Each
// selection event carries its own snapshot, so back-to-back changes are folded
// one by one rather than against whatever is selected later. Completion
// requests and settings writes run on their own goroutines and never read the
// accumulator.
type Engine struct {
	id        string
	store     settings.KV
	completer Completer
	selection document.Reader
	notify    Notifier
	logger    *slog.Logger
	acc       *aggregate.Accumulator

	events   chan event
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithNotifier(notify Notifier) Option {
	return func(e *Engine) {
		if notify != nil {
			e.notify = notify
		}
	}
}

func New(store settings.KV, completer Completer, selection document.Reader, opts ...Option) *Engine {
	e := &Engine{
		id:        uuid.NewString(),
		store:     store,
		completer: completer,
		selection: selection,
		notify:    func(any) {},
		logger:    logging.Nop(),
		acc:       aggregate.New(),
		events:    make(chan event, eventQueueSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("session_id", e.id)
	return e
}

func (e *Engine) ID() string {
	return e.id
}

// Done is closed once Run has returned from its loop.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// SelectionChanged is the host's selection-change callback. selection is the
// selection at the moment of the change.
func (e *Engine) SelectionChanged(selection []document.Node) {
	e.enqueue(event{selection: selection, selectionChanged: true})
}

// Submit is the host's UI-message callback.
func (e *Engine) Submit(cmd Command) {
	e.enqueue(event{cmd: cmd})
}

// HandleMessage decodes a raw UI record and submits it.
func (e *Engine) HandleMessage(_ context.Context, raw json.RawMessage) error {
	cmd, err := DecodeCommand(raw)
	if err != nil {
		return err
	}
	e.Submit(cmd)
	return nil
}

func (e *Engine) enqueue(ev event) {
	select {
	case e.events <- ev:
	case <-e.done:
	}
}

// Run reports saved settings and the initial selection, then handles events
// until a cancel command arrives or ctx is done. In-flight work is canceled
// and waited for before Run returns. Run must be called once.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		e.stop()
		cancel()
		e.wg.Wait()
	}()

	e.logger.Info("engine.session_started", "version", EngineVersion)
	if source, ok := e.selection.(document.Source); ok {
		e.spawn(func() {
			if err := source.Watch(ctx, e.SelectionChanged); err != nil {
				e.logger.Error("engine.selection_watch_failed", "error", err.Error())
			}
		})
	}
	e.spawn(func() { e.loadSavedData(ctx) })
	e.reportSelection(e.selection.Selection())

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine.session_stopped", "reason", ctx.Err().Error())
			return nil
		case ev := <-e.events:
			if ev.selectionChanged {
				e.reportSelection(ev.selection)
				continue
			}
			if ev.cmd.Type == TypeCancel {
				e.logger.Info("engine.session_canceled")
				return nil
			}
			e.handleCommand(ctx, ev.cmd)
		}
	}
}

func (e *Engine) stop() {
	e.stopOnce.Do(func() { close(e.done) })
}

func (e *Engine) spawn(fn func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
}

func (e *Engine) handleCommand(ctx context.Context, cmd Command) {
	switch cmd.Type {
	case TypeProcessText:
		e.processText(ctx, cmd)
	case TypeSaveInstructions:
		instructions := cmd.Instructions
		e.spawn(func() {
			if err := e.store.Set(ctx, settings.KeyInstructions, instructions); err != nil {
				e.logger.Warn("engine.save_instructions_failed", "error", err.Error())
				return
			}
			e.logger.Debug("engine.instructions_saved", "chars", len(instructions))
		})
	default:
		e.logger.Warn("engine.unknown_command", "type", cmd.Type)
	}
}

func (e *Engine) reportSelection(selection []document.Node) {
	snap := e.acc.Update(selection)
	e.logger.Debug("engine.selection_reported", "count", snap.Count, "chars", len(snap.Text), "processed", e.acc.ProcessedCount())
	e.notify(selectedText(snap.Text, snap.Count))
}

func (e *Engine) loadSavedData(ctx context.Context) {
	var apiKey, instructions string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		apiKey, err = e.store.Get(gctx, settings.KeyAPIKey)
		return err
	})
	g.Go(func() error {
		var err error
		instructions, err = e.store.Get(gctx, settings.KeyInstructions)
		return err
	})
	if err := g.Wait(); err != nil {
		e.logger.Warn("engine.load_saved_data_failed", "error", err.Error())
	}
	if ctx.Err() != nil {
		return
	}
	e.logger.Debug("engine.saved_data_loaded", "api_key", logging.RedactValue(apiKey), "has_instructions", instructions != "")
	e.notify(LoadSavedData{Type: TypeLoadSavedData, APIKey: apiKey, Instructions: instructions})
}

func (e *Engine) processText(ctx context.Context, cmd Command) {
	selection := e.selection.Selection()
	if len(document.TextNodes(selection)) == 0 {
		e.logger.Debug("engine.process_text_rejected", "reason", "empty_selection")
		e.notify(processFailure(errinfo.EmptySelection(errinfo.PhaseProcess)))
		return
	}
	snap := e.acc.Update(selection)
	requestID := uuid.NewString()
	e.logger.Info("engine.process_text", "request_id", requestID, "count", snap.Count, "chars", len(snap.Text), "api_key", logging.RedactValue(cmd.APIKey))
	e.spawn(func() { e.complete(ctx, requestID, snap.Text, cmd.APIKey, cmd.Instructions) })
}

// complete runs off the event loop. Overlapping requests are not coordinated;
// each reports its own outcome, so the last response wins in the UI.
func (e *Engine) complete(ctx context.Context, requestID, text, apiKey, instructions string) {
	logger := e.logger.With("request_id", requestID)
	result, err := e.completer.Complete(llm.WithRequestID(ctx, requestID), text, apiKey, instructions)
	if ctx.Err() != nil {
		logger.Debug("engine.process_text_abandoned")
		return
	}
	if err != nil {
		info := mapLLMError(errinfo.PhaseProcess, err)
		logger.Warn("engine.process_text_failed", "error_code", info.ErrorCode, "error", err.Error())
		e.notify(processFailure(info))
		return
	}
	if err := e.persistSettings(ctx, apiKey, instructions); err != nil {
		logger.Error("engine.persist_settings_failed", "error", err.Error())
		e.notify(processFailure(errinfo.SettingsWriteFailed(errinfo.PhaseSettings, err.Error())))
		return
	}
	logger.Info("engine.process_text_completed", "chars", len(result))
	e.notify(processSuccess(result))
	e.notify(ProcessDiff{Type: TypeProcessDiff, Result: diff.Compare(text, result, 0)})
}

func (e *Engine) persistSettings(ctx context.Context, apiKey, instructions string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.store.Set(gctx, settings.KeyAPIKey, apiKey) })
	g.Go(func() error { return e.store.Set(gctx, settings.KeyInstructions, instructions) })
	return g.Wait()
}
