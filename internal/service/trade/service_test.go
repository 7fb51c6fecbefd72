package trade

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/example/trade-marketplace/internal/domain"
	"github.com/example/trade-marketplace/internal/fiscal"
	"github.com/example/trade-marketplace/internal/storage"
)

type stubFiscal struct {
	calls   int
	receipt *fiscal.Receipt
	err     error
}

func (s *stubFiscal) Fiscalize(_ context.Context, _ fiscal.Request) (*fiscal.Receipt, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

type recordingPublisher struct {
	created []string
	deleted []string
}

func (p *recordingPublisher) TradeCreated(_ context.Context, tr *domain.Trade) {
	p.created = append(p.created, tr.ID)
}
func (p *recordingPublisher) TradeDeleted(_ context.Context, id string) {
	p.deleted = append(p.deleted, id)
}
func (p *recordingPublisher) Close() error { return nil }

func strPtr(s string) *string    { return &s }
func f64Ptr(v float64) *float64  { return &v }
func owner() domain.Principal    { return domain.Principal{ID: "u1", Role: domain.RoleUser, TaxID: "TIN-1"} }
func stranger() domain.Principal { return domain.Principal{ID: "u2", Role: domain.RoleUser} }
func admin() domain.Principal    { return domain.Principal{ID: "adm", Role: domain.RoleAdmin} }

func newTestService(fc fiscal.Client) (*Service, *storage.InMemoryTradeRepository, *recordingPublisher) {
	trades := storage.NewInMemoryTradeRepository()
	users := storage.NewInMemoryUserRepository()
	_ = users.Create(context.Background(), &domain.User{ID: "u1", Username: "tendai", Profile: "collector", Role: domain.RoleUser, TaxID: "TIN-1"})
	pub := &recordingPublisher{}
	return NewService(trades, users, fc, pub, zap.NewNop()), trades, pub
}

func TestCreateWithoutCashSkipsFiscalization(t *testing.T) {
	fc := &stubFiscal{receipt: &fiscal.Receipt{ID: "R1"}}
	svc, _, pub := newTestService(fc)

	tr, err := svc.Create(context.Background(), owner(), Input{Title: strPtr("Bike for laptop"), CashAmount: f64Ptr(0)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if fc.calls != 0 {
		t.Fatalf("fiscal client should not be called, got %d calls", fc.calls)
	}
	if tr.FiscalReceipt != "" {
		t.Fatalf("fiscal receipt should be unset, got %q", tr.FiscalReceipt)
	}
	if len(pub.created) != 1 {
		t.Fatalf("expected one created event")
	}
}

func TestCreateWithCashAttachesReceipt(t *testing.T) {
	fc := &stubFiscal{receipt: &fiscal.Receipt{ID: "R1"}}
	svc, trades, _ := newTestService(fc)

	tr, err := svc.Create(context.Background(), owner(), Input{Title: strPtr("Bike plus cash"), CashAmount: f64Ptr(50)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if fc.calls != 1 {
		t.Fatalf("expected exactly one fiscal call, got %d", fc.calls)
	}
	if tr.FiscalReceipt != "R1" {
		t.Fatalf("expected receipt R1, got %q", tr.FiscalReceipt)
	}

	stored, err := trades.GetByID(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.FiscalReceipt != "R1" {
		t.Fatalf("receipt not persisted, got %q", stored.FiscalReceipt)
	}
}

func TestCreateFiscalizationFailureRemovesTrade(t *testing.T) {
	fc := &stubFiscal{err: fmt.Errorf("%w: status 503", fiscal.ErrUpstream)}
	svc, trades, pub := newTestService(fc)

	_, err := svc.Create(context.Background(), owner(), Input{Title: strPtr("Bike plus cash"), CashAmount: f64Ptr(50)})
	if !errors.Is(err, fiscal.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	remaining, err := trades.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("trade should have been removed, found %d", len(remaining))
	}
	if len(pub.created) != 0 {
		t.Fatalf("no created event expected on failure")
	}
}

type updateFailingRepo struct {
	storage.TradeRepository
}

func (r *updateFailingRepo) Update(_ context.Context, _ *domain.Trade) error {
	return errors.New("write concern error")
}

func TestCreateReceiptPersistFailureRemovesTrade(t *testing.T) {
	fc := &stubFiscal{receipt: &fiscal.Receipt{ID: "R1"}}
	trades := storage.NewInMemoryTradeRepository()
	users := storage.NewInMemoryUserRepository()
	pub := &recordingPublisher{}
	svc := NewService(&updateFailingRepo{TradeRepository: trades}, users, fc, pub, zap.NewNop())

	_, err := svc.Create(context.Background(), owner(), Input{Title: strPtr("Bike plus cash"), CashAmount: f64Ptr(50)})
	if err == nil {
		t.Fatalf("expected error when receipt cannot be persisted")
	}

	remaining, err := trades.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("trade should have been removed, found %d", len(remaining))
	}
	if len(pub.created) != 0 {
		t.Fatalf("no created event expected on failure")
	}
}

func TestCreateForcesOwner(t *testing.T) {
	svc, _, _ := newTestService(&stubFiscal{})

	tr, err := svc.Create(context.Background(), owner(), Input{Title: strPtr("Bike")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if tr.UserID != "u1" {
		t.Fatalf("owner should be the principal, got %q", tr.UserID)
	}
	if tr.Status != domain.StatusOpen {
		t.Fatalf("expected default status open, got %q", tr.Status)
	}
}

func TestCreateRejectsNegativeCash(t *testing.T) {
	svc, _, _ := newTestService(&stubFiscal{})

	_, err := svc.Create(context.Background(), owner(), Input{Title: strPtr("Bike"), CashAmount: f64Ptr(-5)})
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	svc, trades, _ := newTestService(&stubFiscal{})

	tr, err := svc.Create(context.Background(), owner(), Input{Title: strPtr("Bike")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.Update(context.Background(), stranger(), tr.ID, Input{Title: strPtr("hijacked")})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	stored, err := trades.GetByID(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Title != "Bike" {
		t.Fatalf("trade should be unchanged, got %q", stored.Title)
	}
}

func TestUpdateByAdminAllowed(t *testing.T) {
	svc, _, _ := newTestService(&stubFiscal{})

	tr, err := svc.Create(context.Background(), owner(), Input{Title: strPtr("Bike")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(context.Background(), admin(), tr.ID, Input{Status: strPtr("completed")})
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("expected status completed, got %q", updated.Status)
	}
	if updated.UserID != "u1" {
		t.Fatalf("owner must not change on update")
	}
}

func TestUpdateMissingTrade(t *testing.T) {
	svc, _, _ := newTestService(&stubFiscal{})

	_, err := svc.Update(context.Background(), owner(), "missing", Input{Title: strPtr("x")})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteByNonOwnerForbidden(t *testing.T) {
	svc, trades, _ := newTestService(&stubFiscal{})

	tr, err := svc.Create(context.Background(), owner(), Input{Title: strPtr("Bike")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), stranger(), tr.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := trades.GetByID(context.Background(), tr.ID); err != nil {
		t.Fatalf("trade should still exist: %v", err)
	}
}

func TestDeleteByAdminAllowed(t *testing.T) {
	svc, trades, pub := newTestService(&stubFiscal{})

	tr, err := svc.Create(context.Background(), owner(), Input{Title: strPtr("Bike")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), admin(), tr.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if _, err := trades.GetByID(context.Background(), tr.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("trade should be gone, got %v", err)
	}
	if len(pub.deleted) != 1 || pub.deleted[0] != tr.ID {
		t.Fatalf("expected deleted event for %s", tr.ID)
	}
}

func TestGetAttachesOwnerProfile(t *testing.T) {
	svc, _, _ := newTestService(&stubFiscal{})

	tr, err := svc.Create(context.Background(), owner(), Input{Title: strPtr("Bike")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := svc.Get(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Owner == nil || got.Owner.Username != "tendai" {
		t.Fatalf("expected owner profile attached, got %+v", got.Owner)
	}
}

func TestGetMissingTrade(t *testing.T) {
	svc, _, _ := newTestService(&stubFiscal{})

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
