// Package storetest provides an in-memory Store for tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hackhub-dev/hackhub-backend/internal/store"
)

// Fake implements store.Store against in-memory slices. Populate the exported
// fields before use. Team enumeration order matches the Teams slice, so ties
// in ranking tests stay deterministic.
//
// Errs injects failures: the key is either a bare method name ("TeamByID")
// or method plus identifier ("OrganizationByID:org-1"). Keyed entries win.
type Fake struct {
	mu sync.Mutex

	Rounds      []store.Round
	Hackathons  []store.Hackathon
	Teams       []store.Team
	Submissions []store.Submission
	Orgs        []store.Organization
	Users       []store.User

	// MessageCounts maps team ID to its recent chat message count.
	MessageCounts map[string]int
	// OnTime maps team ID to [onTime, total] prior submissions.
	OnTime map[string][2]int

	// Inserted records every InsertMessage call in order.
	Inserted []store.Message
	// ActiveWrites records every SetRoundActive call as "id=state".
	ActiveWrites []string

	Errs map[string]error
}

// New returns an empty fake.
func New() *Fake {
	return &Fake{
		MessageCounts: make(map[string]int),
		OnTime:        make(map[string][2]int),
		Errs:          make(map[string]error),
	}
}

func (f *Fake) err(method, id string) error {
	if e, ok := f.Errs[method+":"+id]; ok {
		return e
	}
	return f.Errs[method]
}

// --------------------------------------------------------------------------
// Rounds
// --------------------------------------------------------------------------

func (f *Fake) RoundByID(_ context.Context, id string) (*store.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("RoundByID", id); e != nil {
		return nil, e
	}
	for i := range f.Rounds {
		if f.Rounds[i].ID == id {
			r := f.Rounds[i]
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Fake) RoundsWithSchedule(context.Context) ([]store.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("RoundsWithSchedule", ""); e != nil {
		return nil, e
	}
	var out []store.Round
	for _, r := range f.Rounds {
		if r.StartDate != nil || r.EndDate != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *Fake) ActiveRoundsWithDeadline(context.Context) ([]store.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("ActiveRoundsWithDeadline", ""); e != nil {
		return nil, e
	}
	var out []store.Round
	for _, r := range f.Rounds {
		if r.IsActive && r.EndDate != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *Fake) SetRoundActive(_ context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("SetRoundActive", id); e != nil {
		return e
	}
	for i := range f.Rounds {
		if f.Rounds[i].ID == id {
			f.Rounds[i].IsActive = active
			f.ActiveWrites = append(f.ActiveWrites, fmt.Sprintf("%s=%v", id, active))
			return nil
		}
	}
	return store.ErrNotFound
}

// --------------------------------------------------------------------------
// Hackathons / teams
// --------------------------------------------------------------------------

func (f *Fake) HackathonContainingRound(ctx context.Context, roundID string) (*store.Hackathon, error) {
	round, err := f.RoundByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("HackathonContainingRound", roundID); e != nil {
		return nil, e
	}
	for i := range f.Hackathons {
		if f.Hackathons[i].ID == round.HackathonID {
			h := f.Hackathons[i]
			return &h, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Fake) TeamByID(_ context.Context, id string) (*store.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("TeamByID", id); e != nil {
		return nil, e
	}
	for i := range f.Teams {
		if f.Teams[i].ID == id {
			t := f.Teams[i]
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Fake) TeamsForHackathon(_ context.Context, hackathonID string) ([]store.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("TeamsForHackathon", hackathonID); e != nil {
		return nil, e
	}
	var out []store.Team
	for _, t := range f.Teams {
		if t.HackathonID == hackathonID {
			out = append(out, t)
		}
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Submissions / history
// --------------------------------------------------------------------------

func (f *Fake) SubmissionForTeamRound(_ context.Context, teamID, roundID string) (*store.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("SubmissionForTeamRound", teamID); e != nil {
		return nil, e
	}
	for i := range f.Submissions {
		if f.Submissions[i].TeamID == teamID && f.Submissions[i].RoundID == roundID {
			s := f.Submissions[i]
			return &s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Fake) TeamOnTimeRate(_ context.Context, teamID string) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("TeamOnTimeRate", teamID); e != nil {
		return 0, 0, e
	}
	v := f.OnTime[teamID]
	return v[0], v[1], nil
}

// --------------------------------------------------------------------------
// Messages
// --------------------------------------------------------------------------

func (f *Fake) TeamMessageCountSince(_ context.Context, teamID string, _ time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("TeamMessageCountSince", teamID); e != nil {
		return 0, e
	}
	return f.MessageCounts[teamID], nil
}

func (f *Fake) InsertMessage(_ context.Context, m *store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("InsertMessage", m.TeamID); e != nil {
		return e
	}
	if m.ID == "" {
		m.ID = fmt.Sprintf("msg-%d", len(f.Inserted)+1)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	f.Inserted = append(f.Inserted, *m)
	return nil
}

// --------------------------------------------------------------------------
// Organizations / users
// --------------------------------------------------------------------------

func (f *Fake) OrganizationByID(_ context.Context, id string) (*store.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("OrganizationByID", id); e != nil {
		return nil, e
	}
	for i := range f.Orgs {
		if f.Orgs[i].ID == id {
			o := f.Orgs[i]
			return &o, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Fake) UserByID(_ context.Context, id string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e := f.err("UserByID", id); e != nil {
		return nil, e
	}
	for i := range f.Users {
		if f.Users[i].ID == id {
			u := f.Users[i]
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

var _ store.Store = (*Fake)(nil)
