package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vouchrit/tally"
)

// BulkItem is the result of one voucher of a bulk run.
type BulkItem struct {
	Index     int    `json:"index"`
	VoucherNo string `json:"voucherNo,omitempty"`
	Party     string `json:"party"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
}

// Report summarises a bulk run.
type Report struct {
	RunID     string     `json:"runId"`
	Total     int        `json:"total"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Items     []BulkItem `json:"items"`
}

// BulkBanking posts reqs one after another, in order, waiting for each reply
// before sending the next. A rejected or failed voucher is recorded and the
// run goes on; only a cancelled context stops it early, in which case the
// report covers the vouchers sent so far.
func (s *Session) BulkBanking(ctx context.Context, reqs []tally.BankingRequest) (Report, error) {
	rep := Report{
		RunID: uuid.NewString(),
		Total: len(reqs),
		Items: make([]BulkItem, 0, len(reqs)),
	}
	for i, req := range reqs {
		if err := s.limiter.Wait(ctx); err != nil {
			return rep, err
		}

		item := BulkItem{Index: i, VoucherNo: req.VoucherNo, Party: req.PartyLedger}
		o, err := s.postBanking(ctx, rep.RunID, req)
		switch {
		case ctx.Err() != nil:
			return rep, ctx.Err()
		case err != nil:
			item.Message = err.Error()
		default:
			item.Success = o.Success
			item.Message = o.Message
		}

		if item.Success {
			rep.Succeeded++
		} else {
			rep.Failed++
		}
		rep.Items = append(rep.Items, item)

		s.log.WithFields(logrus.Fields{
			"runId":   rep.RunID,
			"index":   i,
			"voucher": req.VoucherNo,
			"success": item.Success,
		}).Info("bulk banking voucher")
	}
	return rep, nil
}
