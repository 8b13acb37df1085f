package team

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// CandidateSource identifies which query feeds the candidate list.
type CandidateSource string

const (
	// SourceOwn serves the viewer's own assigned candidates.
	SourceOwn CandidateSource = "own"
	// SourceMember serves a selected team member's candidates.
	SourceMember CandidateSource = "member"
	// SourceNone serves no candidates until a member is selected.
	SourceNone CandidateSource = "none"
)

// ComposeInput carries the viewer's role flags and drill-down state.
type ComposeInput struct {
	IsRecruiter      bool
	HasTeamView      bool
	ContextID        *int64
	SelectedMemberID *int64
}

// View is the composed team screen state. Fetch errors are data here,
// never panics or transport failures: the caller renders them.
type View struct {
	Mode             CandidateSource    `json:"mode"`
	TeamMembers      []MemberWithCounts `json:"team_members"`
	HasNoTeamMembers bool               `json:"has_no_team_members"`
	Candidates       []CandidateInfo    `json:"candidates"`
	TeamErr          error              `json:"-"`
	CandidatesErr    error              `json:"-"`
}

// Composer decides which candidate list a team view shows.
type Composer struct {
	gateway Gateway
}

// NewComposer builds a composer over the given gateway.
func NewComposer(gateway Gateway) *Composer {
	return &Composer{gateway: gateway}
}

// Compose resolves the team view in three steps: fetch the roster when
// the viewer may see one, decide the candidate source, then fetch from
// that source only. The roster fetch and a speculative selected-member
// fetch run concurrently; the speculative result is discarded whenever
// the empty-team fallback wins precedence.
func (c *Composer) Compose(ctx context.Context, in ComposeInput) View {
	view := View{
		Mode:        SourceNone,
		TeamMembers: []MemberWithCounts{},
		Candidates:  []CandidateInfo{},
	}

	// Recruiters never need the roster call at all.
	if in.IsRecruiter {
		view.Mode = SourceOwn
		view.Candidates, view.CandidatesErr = c.ownCandidates(ctx)
		return view
	}

	var (
		members    []MemberWithCounts
		membersErr error

		memberCands    []CandidateInfo
		memberCandsErr error
		speculated     bool
	)

	if in.HasTeamView {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if in.ContextID != nil {
				members, membersErr = c.gateway.TeamMembers(gctx, *in.ContextID)
			} else {
				members, membersErr = c.gateway.MyTeamMembers(gctx)
			}
			return nil
		})
		if in.SelectedMemberID != nil {
			speculated = true
			id := *in.SelectedMemberID
			g.Go(func() error {
				memberCands, memberCandsErr = c.gateway.MemberCandidates(gctx, id)
				return nil
			})
		}
		_ = g.Wait()

		if membersErr != nil {
			// An error is not "zero members": the fallback to own
			// candidates must never trigger off a failed roster call.
			view.TeamErr = membersErr
		} else {
			if members == nil {
				members = []MemberWithCounts{}
			}
			view.TeamMembers = members
			view.HasNoTeamMembers = len(members) == 0
		}
	}

	switch {
	case view.HasNoTeamMembers:
		// A manager with an empty team degrades to the recruiter UX.
		view.Mode = SourceOwn
		view.Candidates, view.CandidatesErr = c.ownCandidates(ctx)
	case speculated:
		view.Mode = SourceMember
		if memberCandsErr != nil {
			view.CandidatesErr = memberCandsErr
		} else if memberCands != nil {
			view.Candidates = memberCands
		}
	default:
		// Roster shown, nobody selected: candidates stay empty with no
		// query charged against the inactive sources.
	}
	return view
}

func (c *Composer) ownCandidates(ctx context.Context) ([]CandidateInfo, error) {
	candidates, err := c.gateway.MyCandidates(ctx)
	if err != nil {
		return []CandidateInfo{}, err
	}
	if candidates == nil {
		candidates = []CandidateInfo{}
	}
	return candidates, nil
}
