package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"inkthread/internal/canvas"
	"inkthread/internal/domain"
	"inkthread/internal/repository"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	ErrSessionNotFound  = errors.New("design session not found")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrDesignNotOwned   = errors.New("design belongs to another user")
)

// SessionView is the externally visible snapshot of a design session
type SessionView struct {
	ID         string                 `json:"id"`
	Product    *domain.Product        `json:"product,omitempty"`
	Color      string                 `json:"color"`
	Size       string                 `json:"size"`
	Quantity   int                    `json:"quantity"`
	Elements   []domain.DesignElement `json:"elements"`
	UnitPrice  float64                `json:"unit_price"`
	TotalPrice float64                `json:"total_price"`
	Dirty      bool                   `json:"dirty"`
	DesignID   *uuid.UUID             `json:"design_id,omitempty"`
}

// StudioService hosts design sessions and drives the composition engine:
// selections, elements, rendering, pricing, persistence and cart handoff.
type StudioService interface {
	CreateSession(ctx context.Context, productID uuid.UUID) (*SessionView, error)
	GetSession(sessionID string) (*SessionView, error)
	SelectProduct(ctx context.Context, sessionID string, productID uuid.UUID) (*SessionView, error)
	SelectColor(sessionID, color string) (*SessionView, error)
	SelectSize(sessionID, size string) (*SessionView, error)
	SetQuantity(sessionID string, quantity int) (*SessionView, error)
	AddTextElement(sessionID, text, color string, fontSize int, fontFamily string) (*SessionView, error)
	AddShapeElement(sessionID, shape, color string) (*SessionView, error)
	RenderPNG(sessionID string) ([]byte, error)
	SaveDesign(ctx context.Context, sessionID, name string, userID uuid.UUID) (*domain.SavedDesign, error)
	AddToCart(ctx context.Context, sessionID string, userID uuid.UUID) (*domain.CartItem, error)
	LoadDesign(ctx context.Context, designID, userID uuid.UUID) (*SessionView, error)
	ListDesigns(ctx context.Context, userID uuid.UUID) ([]*domain.SavedDesign, error)
	DeleteDesign(ctx context.Context, designID, userID uuid.UUID) error
}

// session pairs a state with its own lock. One shopper edits one session;
// the lock only serializes the HTTP handlers touching it.
type session struct {
	mu    sync.Mutex
	state *canvas.State
}

type studioService struct {
	productRepo repository.ProductRepository
	designRepo  repository.DesignRepository
	cartRepo    repository.CartRepository
	renderer    *canvas.Renderer

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewStudioService creates a new instance of StudioService
func NewStudioService(
	productRepo repository.ProductRepository,
	designRepo repository.DesignRepository,
	cartRepo repository.CartRepository,
	renderer *canvas.Renderer,
) StudioService {
	return &studioService{
		productRepo: productRepo,
		designRepo:  designRepo,
		cartRepo:    cartRepo,
		renderer:    renderer,
		sessions:    make(map[string]*session),
	}
}

// CreateSession starts a fresh editing session, optionally pre-selecting a
// product when productID is non-nil.
func (s *studioService) CreateSession(ctx context.Context, productID uuid.UUID) (*SessionView, error) {
	state := canvas.NewState()

	if productID != uuid.Nil {
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		if err := state.SelectProduct(product); err != nil {
			return nil, err
		}
	}

	id := ulid.Make().String()
	sess := &session{state: state}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return viewOf(id, state), nil
}

// GetSession returns the current view of a session
func (s *studioService) GetSession(sessionID string) (*SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return viewOf(sessionID, sess.state), nil
}

// SelectProduct switches the session to another product. Elements are kept;
// color and size reset to the product's first allowed entries.
func (s *studioService) SelectProduct(ctx context.Context, sessionID string, productID uuid.UUID) (*SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.state.SelectProduct(product); err != nil {
		return nil, err
	}
	return viewOf(sessionID, sess.state), nil
}

// SelectColor selects a garment color from the product's allowed set
func (s *studioService) SelectColor(sessionID, color string) (*SessionView, error) {
	return s.mutate(sessionID, func(st *canvas.State) error {
		return st.SelectColor(color)
	})
}

// SelectSize selects a garment size from the product's allowed set
func (s *studioService) SelectSize(sessionID, size string) (*SessionView, error) {
	return s.mutate(sessionID, func(st *canvas.State) error {
		return st.SelectSize(size)
	})
}

// SetQuantity sets the order quantity, clamped to a minimum of 1
func (s *studioService) SetQuantity(sessionID string, quantity int) (*SessionView, error) {
	return s.mutate(sessionID, func(st *canvas.State) error {
		st.SetQuantity(quantity)
		return nil
	})
}

// AddTextElement appends a text annotation. Whitespace-only text is a no-op.
func (s *studioService) AddTextElement(sessionID, text, color string, fontSize int, fontFamily string) (*SessionView, error) {
	return s.mutate(sessionID, func(st *canvas.State) error {
		st.AddTextElement(text, color, fontSize, fontFamily)
		return nil
	})
}

// AddShapeElement appends a rectangle or circle annotation
func (s *studioService) AddShapeElement(sessionID, shape, color string) (*SessionView, error) {
	return s.mutate(sessionID, func(st *canvas.State) error {
		_, err := st.AddShapeElement(shape, color)
		return err
	})
}

// RenderPNG renders the current composition as a PNG
func (s *studioService) RenderPNG(sessionID string) ([]byte, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.renderer.RenderPNG(sess.state)
}

// SaveDesign persists the session's design. The first save creates a record;
// later saves from the same session update it under the same identifier.
func (s *studioService) SaveDesign(ctx context.Context, sessionID, name string, userID uuid.UUID) (*domain.SavedDesign, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.saveLocked(ctx, sess.state, name, userID)
}

// saveLocked persists the state. Callers hold the session lock. A failed
// save leaves the state untouched, including its element list.
func (s *studioService) saveLocked(ctx context.Context, state *canvas.State, name string, userID uuid.UUID) (*domain.SavedDesign, error) {
	payload, err := state.Payload()
	if err != nil {
		return nil, err
	}

	thumbnail, err := s.renderer.Thumbnail(state)
	if err != nil {
		return nil, fmt.Errorf("failed to capture thumbnail: %w", err)
	}

	if name == "" {
		name = payload.Product.Name + " design"
	}

	now := time.Now()

	if id, saved := state.SavedID(); saved {
		existing, err := s.designRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing.UserID != userID {
			return nil, ErrDesignNotOwned
		}
		design := &domain.SavedDesign{
			ID:        id,
			UserID:    userID,
			Name:      name,
			Payload:   payload,
			Thumbnail: thumbnail,
			CreatedAt: existing.CreatedAt,
			UpdatedAt: now,
		}
		if err := s.designRepo.Update(ctx, design); err != nil {
			return nil, err
		}
		state.MarkSaved(id)
		return design, nil
	}

	design := &domain.SavedDesign{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Payload:   payload,
		Thumbnail: thumbnail,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.designRepo.Create(ctx, design); err != nil {
		return nil, err
	}
	state.MarkSaved(design.ID)
	return design, nil
}

// AddToCart turns the session into a cart line item. A customized design is
// saved implicitly first so every custom item in a cart has a durable
// backing record. The unit price is captured at this moment.
func (s *studioService) AddToCart(ctx context.Context, sessionID string, userID uuid.UUID) (*domain.CartItem, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	state := sess.state
	product := state.Product()
	if product == nil {
		return nil, canvas.ErrNoProduct
	}

	var designID *uuid.UUID
	if state.HasElements() {
		if id, saved := state.SavedID(); !saved || state.Dirty() {
			design, err := s.saveLocked(ctx, state, "", userID)
			if err != nil {
				return nil, err
			}
			designID = &design.ID
		} else {
			designID = &id
		}
	}

	now := time.Now()
	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: product.ID,
		DesignID:  designID,
		Quantity:  state.Quantity(),
		Size:      state.Size(),
		Color:     state.Color(),
		UnitPrice: state.UnitPrice(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.cartRepo.Add(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// LoadDesign opens a saved design in a fresh editing session. Only the
// design's owner may open it; a reopened session re-saves into the same
// record, so handing it out would hand out write access too.
func (s *studioService) LoadDesign(ctx context.Context, designID, userID uuid.UUID) (*SessionView, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	design, err := s.designRepo.FindByID(ctx, designID)
	if err != nil {
		return nil, err
	}
	if design.UserID != userID {
		return nil, ErrDesignNotOwned
	}

	state := canvas.NewState()
	if err := state.Restore(design.Payload); err != nil {
		return nil, err
	}
	state.MarkSaved(design.ID)

	id := ulid.Make().String()
	sess := &session{state: state}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return viewOf(id, state), nil
}

// ListDesigns returns the user's saved designs
func (s *studioService) ListDesigns(ctx context.Context, userID uuid.UUID) ([]*domain.SavedDesign, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	return s.designRepo.ListByUser(ctx, userID)
}

// DeleteDesign removes a saved design. Deleting an absent id succeeds;
// deleting another user's design does not.
func (s *studioService) DeleteDesign(ctx context.Context, designID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrNotAuthenticated
	}

	design, err := s.designRepo.FindByID(ctx, designID)
	if err != nil {
		if err == repository.ErrDesignNotFound {
			return nil
		}
		return err
	}

	if design.UserID != userID {
		return ErrDesignNotOwned
	}

	return s.designRepo.Delete(ctx, designID)
}

func (s *studioService) lookup(sessionID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *studioService) mutate(sessionID string, fn func(*canvas.State) error) (*SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := fn(sess.state); err != nil {
		return nil, err
	}
	return viewOf(sessionID, sess.state), nil
}

func viewOf(id string, st *canvas.State) *SessionView {
	view := &SessionView{
		ID:         id,
		Product:    st.Product(),
		Color:      st.Color(),
		Size:       st.Size(),
		Quantity:   st.Quantity(),
		Elements:   st.Elements(),
		UnitPrice:  st.UnitPrice(),
		TotalPrice: st.TotalPrice(),
		Dirty:      st.Dirty(),
	}
	if savedID, ok := st.SavedID(); ok {
		view.DesignID = &savedID
	}
	return view
}
