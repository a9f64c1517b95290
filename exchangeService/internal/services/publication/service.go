package publication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/services/order"
	serviceErrors "github.com/gridcert/exchange/shared/errors/service"
	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

const (
	reasonCancelled = "cancelled"
	reasonTimedOut  = "deposit was not confirmed in time"
)

// Service walks deposits through Idle, Submitting and AwaitingConfirmation
// until the ask is placed (Settled) or the workflow gives up (Failed).
type Service struct {
	transfers TransferSource
	asks      AskCreator

	pollInterval time.Duration
	timeout      time.Duration
	retention    time.Duration

	mu           sync.Mutex
	publications map[uuid.UUID]*models.Publication
	cancels      map[uuid.UUID]context.CancelFunc
	// placing holds publications whose ask is being created; they can no
	// longer be cancelled.
	placing map[uuid.UUID]struct{}

	base     context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup
	now      func() time.Time
}

type TransferSource interface {
	TransferByHash(ctx context.Context, transactionHash string) (models.Transfer, error)
}

type AskCreator interface {
	CreateAsk(ctx context.Context, request order.AskRequest) (models.Order, []models.Trade, error)
}

type Config struct {
	PollInterval time.Duration
	Timeout      time.Duration
	// Retention is how long a settled or failed publication stays
	// queryable. Zero keeps them forever.
	Retention time.Duration
}

type Request struct {
	UserID          uuid.UUID
	TransactionHash string
	Volume          decimal.Decimal
	Price           int64
}

func NewService(transfers TransferSource, asks AskCreator, cfg Config) *Service {
	base, shutdown := context.WithCancel(context.Background())

	return &Service{
		transfers:    transfers,
		asks:         asks,
		pollInterval: cfg.PollInterval,
		timeout:      cfg.Timeout,
		retention:    cfg.Retention,
		publications: make(map[uuid.UUID]*models.Publication),
		cancels:      make(map[uuid.UUID]context.CancelFunc),
		placing:      make(map[uuid.UUID]struct{}),
		base:         base,
		shutdown:     shutdown,
		now:          time.Now,
	}
}

// Start registers the publication and begins waiting for its deposit in
// the background. The returned snapshot is in the Submitting state.
func (s *Service) Start(ctx context.Context, request Request) (models.Publication, error) {
	const op = "Service.Start"

	if request.TransactionHash == "" || request.Price <= 0 || !request.Volume.IsPositive() {
		return models.Publication{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrInvalidOrder)
	}

	now := s.now().UTC()
	publication := &models.Publication{
		ID:              uuid.New(),
		UserID:          request.UserID,
		TransactionHash: request.TransactionHash,
		Volume:          request.Volume,
		Price:           request.Price,
		State:           models.PublicationIdle,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	runCtx, cancel := context.WithTimeout(s.base, s.timeout)

	s.mu.Lock()
	if s.base.Err() != nil {
		s.mu.Unlock()
		cancel()
		return models.Publication{}, fmt.Errorf("%s: %w", op, s.base.Err())
	}
	publication.State = models.PublicationSubmitting
	s.publications[publication.ID] = publication
	s.cancels[publication.ID] = cancel
	snapshot := *publication
	s.mu.Unlock()

	zapLogger.Info(ctx, "publication started",
		zap.String("publication_id", snapshot.ID.String()),
		zap.String("transaction_hash", snapshot.TransactionHash),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.run(runCtx, snapshot)
	}()

	return snapshot, nil
}

// Get returns the caller's publication. Publications of other users are
// reported as not found.
func (s *Service) Get(_ context.Context, id, userID uuid.UUID) (models.Publication, error) {
	const op = "Service.Get"

	s.mu.Lock()
	defer s.mu.Unlock()

	publication, found := s.publications[id]
	if !found || publication.UserID != userID {
		return models.Publication{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrPublicationNotFound)
	}

	return *publication, nil
}

// Cancel stops a publication that has not reached a final state. Cancelling
// a final publication, or one whose ask is already being placed, returns it
// unchanged.
func (s *Service) Cancel(ctx context.Context, id, userID uuid.UUID) (models.Publication, error) {
	const op = "Service.Cancel"

	s.mu.Lock()
	publication, found := s.publications[id]
	if !found || publication.UserID != userID {
		s.mu.Unlock()
		return models.Publication{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrPublicationNotFound)
	}
	_, placing := s.placing[id]
	cancelled := !placing && !publication.State.Final()
	if cancelled {
		cancel := s.cancels[id]
		s.finishLocked(publication, models.PublicationFailed, reasonCancelled)
		if cancel != nil {
			cancel()
		}
	}
	snapshot := *publication
	s.mu.Unlock()

	if cancelled {
		zapLogger.Info(ctx, "publication cancelled", zap.String("publication_id", id.String()))
	} else if placing {
		zapLogger.Info(ctx, "publication ask already submitted, cancel ignored",
			zap.String("publication_id", id.String()),
		)
	}

	return snapshot, nil
}

// Purge drops final publications last updated longer than the retention ago.
func (s *Service) Purge(ctx context.Context) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	cutoff := s.now().UTC().Add(-s.retention)
	purged := 0
	for id, publication := range s.publications {
		if publication.State.Final() && publication.UpdatedAt.Before(cutoff) {
			delete(s.publications, id)
			purged++
		}
	}
	s.mu.Unlock()

	if purged > 0 {
		zapLogger.Info(ctx, "final publications purged", zap.Int("publications", purged))
	}

	return purged, nil
}

// Close cancels every running publication and waits for the workers.
func (s *Service) Close() {
	s.mu.Lock()
	s.shutdown()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Service) run(ctx context.Context, publication models.Publication) {
	s.transition(publication.ID, models.PublicationAwaitingConfirmation, "")

	transfer, err := s.awaitConfirmation(ctx, publication)
	if err != nil {
		reason := err.Error()
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			reason = reasonTimedOut
		case errors.Is(err, context.Canceled):
			reason = reasonCancelled
		}
		s.transition(publication.ID, models.PublicationFailed, reason)
		return
	}

	if !s.beginPlacing(publication.ID) {
		return
	}

	placed, _, err := s.asks.CreateAsk(context.WithoutCancel(ctx), order.AskRequest{
		UserID:  publication.UserID,
		AssetID: transfer.Asset.ID,
		Price:   publication.Price,
		Volume:  publication.Volume,
	})
	if err != nil {
		zapLogger.Warn(ctx, "publication ask failed",
			zap.String("publication_id", publication.ID.String()),
			zap.Error(err),
		)
	}

	s.mu.Lock()
	delete(s.placing, publication.ID)
	current, found := s.publications[publication.ID]
	if !found || current.State.Final() {
		s.mu.Unlock()
		return
	}
	if err != nil && placed.ID == uuid.Nil {
		s.finishLocked(current, models.PublicationFailed, err.Error())
		s.mu.Unlock()
		return
	}
	current.AskID = placed.ID
	s.finishLocked(current, models.PublicationSettled, "")
	s.mu.Unlock()

	zapLogger.Info(ctx, "publication settled",
		zap.String("publication_id", publication.ID.String()),
		zap.String("ask_id", placed.ID.String()),
	)
}

// awaitConfirmation polls the ledger until the deposit is confirmed, fails,
// or ctx ends. An unknown hash is retried since the watcher may lag.
func (s *Service) awaitConfirmation(ctx context.Context, publication models.Publication) (models.Transfer, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		transfer, err := s.transfers.TransferByHash(ctx, publication.TransactionHash)
		switch {
		case err == nil:
			if transfer.UserID != publication.UserID || transfer.Direction != models.DirectionDeposit {
				return models.Transfer{}, errors.New("transfer is not a deposit of this user")
			}
			switch transfer.Status {
			case models.TransferConfirmed:
				return transfer, nil
			case models.TransferError:
				return models.Transfer{}, errors.New("deposit failed")
			}
		case errors.Is(err, serviceErrors.ErrTransferNotFound):
		case ctx.Err() != nil:
			return models.Transfer{}, ctx.Err()
		default:
			zapLogger.Warn(ctx, "polling deposit failed",
				zap.String("publication_id", publication.ID.String()),
				zap.Error(err),
			)
		}

		select {
		case <-ctx.Done():
			return models.Transfer{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// beginPlacing marks the publication as creating its ask unless it was
// cancelled while the deposit confirmed.
func (s *Service) beginPlacing(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	publication, found := s.publications[id]
	if !found || publication.State.Final() {
		return false
	}
	s.placing[id] = struct{}{}

	return true
}

func (s *Service) transition(id uuid.UUID, state models.PublicationState, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	publication, found := s.publications[id]
	if !found || publication.State.Final() {
		return
	}
	if state.Final() {
		s.finishLocked(publication, state, reason)
		return
	}

	publication.State = state
	publication.UpdatedAt = s.now().UTC()
}

func (s *Service) finishLocked(publication *models.Publication, state models.PublicationState, reason string) {
	publication.State = state
	publication.Reason = reason
	publication.UpdatedAt = s.now().UTC()
	delete(s.cancels, publication.ID)
}
