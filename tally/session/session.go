// Package session runs the flows of one signed-in user against Tally:
// catalog loading, ledger creation and voucher posting.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/request"
	"github.com/vouchrit/tally/tally/response"
	"github.com/vouchrit/tally/tally/snapshot"
	"github.com/vouchrit/tally/tally/xmltree"
)

// Poster sends a request document and returns Tally's raw reply.
// *transport.Client implements it.
type Poster interface {
	Post(ctx context.Context, body string) ([]byte, error)
}

// Outcome is Tally's verdict on an import. A rejected voucher is an Outcome
// with Success false, not an error.
type Outcome struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Result  response.Result `json:"result"`
}

func outcomeOf(doc *xmltree.Node) Outcome {
	o := Outcome{Result: response.ImportResult(doc)}
	if response.IsSuccess(doc) {
		o.Success = true
		return o
	}
	o.Message = response.DescribeError(doc)
	return o
}

// Session holds the collaborators of one user.
type Session struct {
	poster   Poster
	userID   string
	groups   tally.GroupTable
	cache    *snapshot.Cache
	catalogs snapshot.CatalogStore
	invoices snapshot.InvoiceStore
	history  snapshot.HistoryStore
	limiter  *rate.Limiter
	log      *logrus.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithGroups replaces the group table used to classify ledgers.
func WithGroups(g tally.GroupTable) Option {
	return func(s *Session) { s.groups = g.Merge(tally.DefaultGroups) }
}

// WithCache shares a snapshot cache between sessions.
func WithCache(c *snapshot.Cache) Option {
	return func(s *Session) { s.cache = c }
}

// WithCatalogStore sets where prefetched catalogs are read from and saved to.
func WithCatalogStore(cs snapshot.CatalogStore) Option {
	return func(s *Session) { s.catalogs = cs }
}

// WithInvoiceStore keeps a copy of every invoice Tally accepted.
func WithInvoiceStore(is snapshot.InvoiceStore) Option {
	return func(s *Session) { s.invoices = is }
}

// WithHistoryStore records every banking post.
func WithHistoryStore(hs snapshot.HistoryStore) Option {
	return func(s *Session) { s.history = hs }
}

// WithPostInterval spaces consecutive bulk posts by at least d.
func WithPostInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithLogger replaces the shared logger.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a session for userID posting through p.
func New(p Poster, userID string, opts ...Option) *Session {
	s := &Session{
		poster:  p,
		userID:  userID,
		groups:  tally.DefaultGroups,
		cache:   snapshot.NewCache(30 * time.Minute),
		limiter: rate.NewLimiter(rate.Inf, 1),
		log:     tally.Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) key(company string) snapshot.Key {
	return snapshot.Key{UserID: s.userID, CompanyID: company}
}

func (s *Session) send(ctx context.Context, body string) (*xmltree.Node, error) {
	raw, err := s.poster.Post(ctx, body)
	if err != nil {
		return nil, err
	}
	return xmltree.Parse(raw)
}

// FetchCatalog asks Tally for the ledgers and stock items of company, both
// requests in flight at once, and caches the result.
func (s *Session) FetchCatalog(ctx context.Context, company string) (snapshot.Snapshot, error) {
	var ledgers, stock *xmltree.Node
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := s.send(gctx, request.FetchLedgers(company))
		if err != nil {
			return fmt.Errorf("fetch ledgers: %w", err)
		}
		ledgers = doc
		return nil
	})
	g.Go(func() error {
		doc, err := s.send(gctx, request.FetchStockItems(company))
		if err != nil {
			return fmt.Errorf("fetch stock items: %w", err)
		}
		stock = doc
		return nil
	})
	if err := g.Wait(); err != nil {
		return snapshot.Snapshot{}, err
	}

	name := company
	if name == "" {
		name, _ = response.CompanyName(ledgers)
	}
	snap := snapshot.Snapshot{
		Company:    name,
		Ledgers:    response.LedgerCatalog(ledgers, s.groups),
		StockItems: response.StockItems(stock),
		FetchedAt:  time.Now().UTC(),
	}
	s.cache.Put(s.key(company), snap)

	if s.catalogs != nil {
		if err := s.catalogs.SaveCatalog(ctx, company, snap); err != nil {
			tally.LogError("session", "FetchCatalog", "save catalog", company, err)
		}
	}
	return snap, nil
}

// LoadCatalog returns the cached snapshot of company, else the prefetched one
// from the catalog store, else a fresh one from Tally.
func (s *Session) LoadCatalog(ctx context.Context, company string) (snapshot.Snapshot, error) {
	if snap, ok := s.cache.Get(s.key(company)); ok {
		return snap, nil
	}
	if s.catalogs != nil {
		snap, err := s.catalogs.LoadCatalog(ctx, company)
		switch {
		case err == nil:
			s.cache.Put(s.key(company), snap)
			return snap, nil
		case !errors.Is(err, snapshot.ErrNotFound):
			tally.LogError("session", "LoadCatalog", "load prefetched catalog", company, err)
		}
	}
	return s.FetchCatalog(ctx, company)
}

// Invalidate forgets the cached snapshot of company.
func (s *Session) Invalidate(company string) {
	s.cache.Invalidate(s.key(company))
}

// Companies lists the companies loaded in Tally.
func (s *Session) Companies(ctx context.Context) ([]tally.Company, error) {
	doc, err := s.send(ctx, request.FetchCompanies())
	if err != nil {
		return nil, err
	}
	return response.Companies(doc), nil
}

// CreateLedger creates a ledger master. On success the cached snapshot of the
// company, if any, is replaced by one listing the new ledger.
func (s *Session) CreateLedger(ctx context.Context, m tally.LedgerMaster) (Outcome, error) {
	body, err := request.CreateLedger(m)
	if err != nil {
		return Outcome{}, err
	}
	doc, err := s.send(ctx, body)
	if err != nil {
		return Outcome{}, err
	}
	o := outcomeOf(doc)
	if o.Success {
		s.cache.AppendLedger(s.key(m.Company), m.Name, m.ParentGroup, s.groups)
	}
	return o, nil
}

// PostInvoice recalculates the taxes of inv, validates it against the
// company's stock items and posts it as a voucher of type vt. Accepted
// invoices are kept in the invoice store under fileID.
func (s *Session) PostInvoice(ctx context.Context, inv tally.Invoice, vt tally.VoucherType, fileID string) (Outcome, error) {
	inv = inv.Recalculate()

	snap, err := s.LoadCatalog(ctx, inv.Company)
	if err != nil {
		return Outcome{}, err
	}
	if err := tally.ValidateInvoice(inv, snap.StockItems).Err(); err != nil {
		return Outcome{}, err
	}

	v, err := tally.NewVoucher(inv, vt)
	if err != nil {
		return Outcome{}, err
	}
	doc, err := s.send(ctx, request.Voucher(v))
	if err != nil {
		return Outcome{}, err
	}
	o := outcomeOf(doc)
	if o.Success && s.invoices != nil {
		if err := s.invoices.SaveInvoice(ctx, inv.Company, fileID, inv, s.userID); err != nil {
			tally.LogError("session", "PostInvoice", "save invoice", inv.VoucherNo, err)
		}
	}
	return o, nil
}

// PostInvoiceBatch posts all invoices in one request. Tally answers for the
// batch as a whole.
func (s *Session) PostInvoiceBatch(ctx context.Context, invoices []tally.Invoice, vt tally.VoucherType) (Outcome, error) {
	synced := make([]tally.Invoice, len(invoices))
	for i, inv := range invoices {
		synced[i] = inv.Recalculate()
	}
	body, err := request.BatchVouchers(synced, vt)
	if err != nil {
		return Outcome{}, err
	}
	doc, err := s.send(ctx, body)
	if err != nil {
		return Outcome{}, err
	}
	return outcomeOf(doc), nil
}

// PostBanking posts one Payment or Receipt voucher and records it in the
// banking history.
func (s *Session) PostBanking(ctx context.Context, req tally.BankingRequest) (Outcome, error) {
	return s.postBanking(ctx, "", req)
}

func (s *Session) postBanking(ctx context.Context, runID string, req tally.BankingRequest) (Outcome, error) {
	body, err := request.BankingVoucher(req)
	if err != nil {
		return Outcome{}, err
	}
	doc, err := s.send(ctx, body)
	if err != nil {
		s.record(ctx, runID, req, Outcome{Message: err.Error()})
		return Outcome{}, err
	}
	o := outcomeOf(doc)
	s.record(ctx, runID, req, o)
	return o, nil
}

func (s *Session) record(ctx context.Context, runID string, req tally.BankingRequest, o Outcome) {
	if s.history == nil {
		return
	}
	e := snapshot.NewHistoryEntry(runID, req, o.Success, o.Message)
	if err := s.history.AppendHistory(ctx, req.Company, e); err != nil {
		tally.LogError("session", "postBanking", "append history", req.VoucherNo, err)
	}
}
