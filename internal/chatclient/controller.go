package chatclient

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storypals/internal/domain"
)

// Backend es lo que el Controller necesita del servidor.
type Backend interface {
	HistoryFetcher
	SendMessage(ctx context.Context, req SendRequest) (string, error)
	SaveChatHistory(ctx context.Context, userID, characterID string, messages []domain.ChatMessage) error
}

// Controller coordina envio, reintento y cancelacion de los mensajes de una
// vista de chat. Como maximo una entrega esta en curso a la vez.
type Controller struct {
	backend   Backend
	store     *Store
	loader    *HistoryLoader
	character domain.Character
	userID    string
	logger    *zap.Logger
	now       func() time.Time
	supersede bool

	base     context.Context
	stopBase context.CancelFunc

	mu       sync.Mutex
	cancel   context.CancelFunc
	inflight string
	gen      uint64
	errText  string
	closed   bool
	onChange func()

	// hydrated pasa a true cuando Activate fusiona el historial. Antes de eso
	// los guardados quedan pendientes; si la carga fallo no se guarda nunca.
	hydrated    bool
	noSave      bool
	pendingSave bool
	saveSeq     uint64

	saveMu   sync.Mutex
	savedSeq uint64
	wg       sync.WaitGroup
}

type ControllerOption func(*Controller)

// WithSupersede hace que Send/Retry cancelen la entrega en curso en lugar de
// rechazarse con ErrSendInFlight. El mensaje reemplazado queda failed sin banner.
func WithSupersede() ControllerOption {
	return func(c *Controller) { c.supersede = true }
}

func WithControllerLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController crea el controlador de la vista de chat de userID con
// character. userID vacio es un usuario anonimo: no hay historial.
func NewController(backend Backend, character domain.Character, userID string, opts ...ControllerOption) *Controller {
	c := &Controller{
		backend:   backend,
		store:     NewStore(),
		character: character,
		userID:    userID,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.loader = NewHistoryLoader(backend, userID, character, c.logger)
	c.loader.now = c.now
	c.base, c.stopBase = context.WithCancel(context.Background())
	return c
}

// OnChange registra fn, que se invoca despues de cada mutacion visible.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) Character() domain.Character { return c.character }

func (c *Controller) Messages() []domain.ChatMessage { return c.store.Messages() }

func (c *Controller) Last() (domain.ChatMessage, bool) { return c.store.Last() }

func (c *Controller) LastFailed() (domain.ChatMessage, bool) { return c.store.LastFailed() }

// Busy informa si hay una entrega en curso.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Error devuelve el texto del banner de error actual.
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errText
}

func (c *Controller) ClearError() {
	c.mu.Lock()
	if c.closed || c.errText == "" {
		c.mu.Unlock()
		return
	}
	c.errText = ""
	c.mu.Unlock()
	c.notify()
}

// Activate carga el historial de la vista. Solo la primera llamada tiene efecto.
func (c *Controller) Activate(ctx context.Context) string {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ""
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.base, cancel)
	defer stop()

	msgs, warning, ok := c.loader.Initial(ctx)
	if !ok {
		return ""
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ""
	}
	// Mensajes enviados antes de que llegue el historial quedan al final.
	c.store.Reset(append(msgs, c.store.Messages()...))
	c.hydrated = true
	if warning != "" {
		c.errText = warning
		// Guardar sobre un historial que no se pudo leer lo borraria.
		c.noSave = true
	}
	var (
		snapshot []domain.ChatMessage
		seq      uint64
		save     bool
	)
	if c.pendingSave {
		c.pendingSave = false
		snapshot, seq, save = c.snapshotLocked()
	}
	c.mu.Unlock()
	c.notify()

	if save {
		c.persist(seq, snapshot)
	}
	return warning
}

// Send agrega text como mensaje del usuario y lo entrega en segundo plano.
func (c *Controller) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err := c.claimLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	msg := domain.ChatMessage{
		ID:          uuid.NewString(),
		Text:        text,
		Sender:      domain.SenderUser,
		Timestamp:   c.now().UTC(),
		CharacterID: c.character.ID,
		Status:      domain.StatusSending,
	}
	c.store.Append(msg)
	c.startLocked(msg)
	c.mu.Unlock()

	c.notify()
	return nil
}

// Retry vuelve a entregar el mensaje fallido id, en el mismo lugar del Store.
func (c *Controller) Retry(id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	msg, ok := c.store.Get(id)
	if !ok || msg.Sender != domain.SenderUser || msg.Status != domain.StatusFailed {
		c.mu.Unlock()
		return ErrNotRetryable
	}
	if err := c.claimLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.store.UpdateStatus(id, domain.StatusSending)
	msg.Status = domain.StatusSending
	c.startLocked(msg)
	c.mu.Unlock()

	c.notify()
	return nil
}

// Close cancela la entrega en curso y espera a que terminen las goroutines.
// Despues de Close ninguna respuesta modifica el Store.
func (c *Controller) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.stopBase()
		c.cancel = nil
		c.inflight = ""
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Wait bloquea hasta que no quedan entregas ni guardados en curso.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) claimLocked() error {
	if c.cancel == nil {
		return nil
	}
	if !c.supersede {
		return ErrSendInFlight
	}
	c.cancel()
	c.store.UpdateStatus(c.inflight, domain.StatusFailed)
	c.cancel = nil
	c.inflight = ""
	return nil
}

func (c *Controller) startLocked(msg domain.ChatMessage) {
	ctx, cancel := context.WithCancel(c.base)
	c.gen++
	c.cancel = cancel
	c.inflight = msg.ID
	c.errText = ""
	c.wg.Add(1)
	go c.deliver(ctx, cancel, c.gen, msg)
}

func (c *Controller) deliver(ctx context.Context, cancel context.CancelFunc, gen uint64, msg domain.ChatMessage) {
	defer c.wg.Done()
	defer cancel()

	reply, err := c.backend.SendMessage(ctx, SendRequest{
		CharacterID: c.character.ID,
		Content:     msg.Text,
	})
	reply = strings.TrimSpace(reply)
	if err == nil && reply == "" {
		err = &Error{Kind: KindServer, Err: errEmptyReply}
	}

	c.mu.Lock()
	if c.closed || gen != c.gen || c.cancel == nil {
		c.mu.Unlock()
		return
	}
	c.cancel = nil
	c.inflight = ""

	if err != nil {
		c.store.UpdateStatus(msg.ID, domain.StatusFailed)
		if !IsCanceled(err) {
			c.errText = UserMessage(err)
			c.logger.Warn("send chat message failed",
				zap.String("character_id", c.character.ID),
				zap.String("kind", string(KindOf(err))),
				zap.Error(err),
			)
		}
		c.mu.Unlock()
		c.notify()
		return
	}

	c.store.UpdateStatus(msg.ID, domain.StatusSent)
	c.store.Append(domain.ChatMessage{
		ID:          uuid.NewString(),
		Text:        reply,
		Sender:      domain.SenderBot,
		Timestamp:   c.now().UTC(),
		CharacterID: c.character.ID,
		Status:      domain.StatusSent,
	})
	snapshot, seq, save := c.snapshotLocked()
	c.mu.Unlock()
	c.notify()

	if save {
		c.persist(seq, snapshot)
	}
}

// snapshotLocked toma la copia a persistir en la misma seccion critica que
// la mutacion que la origina. Requiere c.mu.
func (c *Controller) snapshotLocked() ([]domain.ChatMessage, uint64, bool) {
	if c.userID == "" || c.noSave {
		return nil, 0, false
	}
	if !c.hydrated {
		c.pendingSave = true
		return nil, 0, false
	}
	c.saveSeq++
	return settleSending(c.store.Messages()), c.saveSeq, true
}

// persist guarda snapshot salvo que ya se haya intentado uno posterior.
// Los fallos solo se registran.
func (c *Controller) persist(seq uint64, snapshot []domain.ChatMessage) {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	if seq <= c.savedSeq {
		return
	}
	c.savedSeq = seq
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	if err := c.backend.SaveChatHistory(c.base, c.userID, c.character.ID, snapshot); err != nil {
		if !IsCanceled(err) {
			c.logger.Warn("save chat history failed",
				zap.String("user_id", c.userID),
				zap.String("character_id", c.character.ID),
				zap.Error(err),
			)
		}
	}
}

// settleSending devuelve una copia de msgs apta para guardar: un mensaje del
// usuario en sending no sobrevive a la vista y se guarda como failed.
func settleSending(msgs []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	for i := range out {
		if out[i].Sender == domain.SenderUser && out[i].Status == domain.StatusSending {
			out[i].Status = domain.StatusFailed
		}
	}
	return out
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	closed := c.closed
	c.mu.Unlock()
	if fn != nil && !closed {
		fn()
	}
}
