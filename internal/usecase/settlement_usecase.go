package usecase

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

type SettlementUsecase struct {
	settlements repo.SettlementRepository
	artistShare decimal.Decimal
}

func NewSettlementUsecase(settlements repo.SettlementRepository, artistShare decimal.Decimal) *SettlementUsecase {
	return &SettlementUsecase{settlements: settlements, artistShare: artistShare}
}

type SettlementSummary struct {
	ArtistRate    decimal.Decimal `json:"artist_rate"`
	TotalGross    decimal.Decimal `json:"total_gross"`
	ArtistShare   decimal.Decimal `json:"artist_share"`
	VenueShare    decimal.Decimal `json:"venue_share"`
	PendingPayout decimal.Decimal `json:"pending_payout"`
}

type SettlementsOutput struct {
	Summary SettlementSummary  `json:"summary"`
	Items   []model.Settlement `json:"items"`
}

func (u *SettlementUsecase) List(ctx context.Context) (SettlementsOutput, error) {
	rows, err := u.settlements.List(ctx)
	if err != nil {
		return SettlementsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return SettlementsOutput{Summary: Summarize(rows, u.artistShare), Items: rows}, nil
}

// Summarize totals the rows. Pending payout is the gross still owed.
func Summarize(rows []model.Settlement, artistRate decimal.Decimal) SettlementSummary {
	s := SettlementSummary{
		ArtistRate:    artistRate,
		TotalGross:    decimal.Zero,
		ArtistShare:   decimal.Zero,
		VenueShare:    decimal.Zero,
		PendingPayout: decimal.Zero,
	}
	for _, r := range rows {
		s.TotalGross = s.TotalGross.Add(r.Gross)
		s.ArtistShare = s.ArtistShare.Add(r.ArtistShare)
		s.VenueShare = s.VenueShare.Add(r.VenueShare)
		if r.Status == model.SettlementStatusPending {
			s.PendingPayout = s.PendingPayout.Add(r.Gross)
		}
	}
	return s
}
