package services

import (
	"context"
	"database/sql"
	"math"

	"github.com/dmitrijs2005/ghostnote/internal/server/config"
	"github.com/dmitrijs2005/ghostnote/internal/server/repositories/repomanager"
)

// PublicStats is the landing page counter set.
type PublicStats struct {
	TotalUsers             int64
	TotalMessages          int64
	UsersWithMessages      int64
	AcceptingUsers         int64
	AverageMessagesPerUser float64
	BaselineApplied        bool
}

// StatsService aggregates counts over verified accounts.
type StatsService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	baselineUsers    int64
	baselineMessages int64
}

func NewStatsService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *StatsService {
	return &StatsService{
		db:               db,
		repomanager:      m,
		baselineUsers:    cfg.StatsBaselineUsers,
		baselineMessages: cfg.StatsBaselineMessages,
	}
}

// Stats returns the current counters. Baseline offsets only touch the two
// headline totals; the average is computed from real counts.
func (s *StatsService) Stats(ctx context.Context) (*PublicStats, error) {
	st, err := s.repomanager.Accounts(s.db).Stats(ctx)
	if err != nil {
		return nil, err
	}

	out := &PublicStats{
		TotalUsers:        st.TotalUsers + s.baselineUsers,
		TotalMessages:     st.TotalMessages + s.baselineMessages,
		UsersWithMessages: st.UsersWithMessages,
		AcceptingUsers:    st.AcceptingUsers,
		BaselineApplied:   s.baselineUsers != 0 || s.baselineMessages != 0,
	}
	if st.TotalUsers > 0 {
		out.AverageMessagesPerUser = math.Round(float64(st.TotalMessages)/float64(st.TotalUsers)*10) / 10
	}
	return out, nil
}
