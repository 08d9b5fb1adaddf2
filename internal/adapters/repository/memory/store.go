// Package memory keeps every table in process memory behind one mutex. It
// backs the service tests and local runs without a database.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type voteKey struct {
	ballotID uuid.UUID
	voterID  uuid.UUID
}

type attendanceKey struct {
	userID    uuid.UUID
	sessionID uuid.UUID
}

type Store struct {
	mu sync.RWMutex

	users         map[uuid.UUID]domain.User
	profiles      map[uuid.UUID]domain.Profile
	refreshTokens map[string]domain.RefreshToken

	ballots map[uuid.UUID]domain.Ballot
	options map[uuid.UUID]domain.Option
	votes   map[voteKey]domain.Vote

	sessions   map[uuid.UUID]domain.Session
	attendance map[attendanceKey]domain.AttendanceRecord
}

func NewStore() *Store {
	return &Store{
		users:         make(map[uuid.UUID]domain.User),
		profiles:      make(map[uuid.UUID]domain.Profile),
		refreshTokens: make(map[string]domain.RefreshToken),
		ballots:       make(map[uuid.UUID]domain.Ballot),
		options:       make(map[uuid.UUID]domain.Option),
		votes:         make(map[voteKey]domain.Vote),
		sessions:      make(map[uuid.UUID]domain.Session),
		attendance:    make(map[attendanceKey]domain.AttendanceRecord),
	}
}

func (s *Store) Ballots() *BallotRepository        { return &BallotRepository{s: s} }
func (s *Store) Votes() *VoteRepository            { return &VoteRepository{s: s} }
func (s *Store) Attendance() *AttendanceRepository { return &AttendanceRepository{s: s} }
func (s *Store) Users() *UserRepository            { return &UserRepository{s: s} }
func (s *Store) Auth() *AuthRepository             { return &AuthRepository{s: s} }

var (
	_ ports.BallotRepository     = (*BallotRepository)(nil)
	_ ports.VoteRepository       = (*VoteRepository)(nil)
	_ ports.AttendanceRepository = (*AttendanceRepository)(nil)
	_ ports.UserRepository       = (*UserRepository)(nil)
	_ ports.AuthRepository       = (*AuthRepository)(nil)
	_ ports.StatsRepository      = (*StatsRepository)(nil)
)
